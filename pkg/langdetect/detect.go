// Package langdetect decides whether a code snippet or a file holds Nix.
// It is used for untagged Markdown fences and for files without a .nix
// extension. Cheap structural checks run first; go-enry's shebang, filename
// and classifier heuristics settle the rest.
package langdetect

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names returned by Detect.
const (
	LangNix  = "nix"
	LangText = "text"
	LangBash = "bash"
	LangJSON = "json"
)

// nixTags are fence info strings that mark a block as Nix.
//
//nolint:gochecknoglobals // Read-only lookup table.
var nixTags = map[string]bool{
	"nix":    true,
	"nixos":  true,
	"nix-fn": true,
}

// nixMarkers are fragments that rarely appear outside Nix. Two or more
// in a snippet decide the language without the classifier.
//
//nolint:gochecknoglobals // Read-only lookup table.
var nixMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*\{[^{}]*\}:\s*$`),       // { pkgs, ... }:
	regexp.MustCompile(`(?m)^\s*[a-zA-Z_][\w'-]*:\s*$`), // curried argument
	regexp.MustCompile(`\bmkDerivation\b`),
	regexp.MustCompile(`\bwith import <nixpkgs>`),
	regexp.MustCompile(`<nixpkgs>`),
	regexp.MustCompile(`\binherit\b[^;]*;`),
	regexp.MustCompile(`(?m)^\s*let\s*$`),
	regexp.MustCompile(`(?m)^\s*in\s*$`),
	regexp.MustCompile(`\$\{[^}]+\}`),
	regexp.MustCompile(`''\s*$`),
	regexp.MustCompile(`\bpkgs\.[a-zA-Z]`),
	regexp.MustCompile(`(?m)^\s*[a-zA-Z_][\w.'-]*\s*=\s*[^=;]*;\s*$`), // binding
}

// minMarkers is the number of marker hits that identify Nix.
const minMarkers = 2

// classifierCandidates narrows go-enry's classifier.
//
//nolint:gochecknoglobals // Read-only list.
var classifierCandidates = []string{
	"Nix", "Shell", "JSON", "YAML", "Python", "JavaScript", "Haskell", "TOML",
}

// IsNixTag reports whether a fence info string names Nix. Only the first
// word counts, so "nix title=flake.nix" is Nix.
func IsNixTag(info string) bool {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return false
	}
	return nixTags[strings.ToLower(fields[0])]
}

// IsNixPath reports whether a path names a Nix file by its extension or
// file name.
func IsNixPath(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".nix") {
		return true
	}
	lang, safe := enry.GetLanguageByExtension(path)
	return safe && lang == "Nix"
}

// IsNix reports whether content looks like Nix source.
func IsNix(content []byte) bool {
	return Detect(content) == LangNix
}

// Detect returns "nix" for Nix source, a lower-case language name when
// something else is recognized, and "text" otherwise.
func Detect(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return LangText
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if looksLikeJSON(trimmed) {
		return LangJSON
	}

	if countMarkers(content) >= minMarkers {
		return LangNix
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}
	return LangText
}

func countMarkers(content []byte) int {
	hits := 0
	for _, re := range nixMarkers {
		if re.Match(content) {
			hits++
		}
	}
	return hits
}

// looksLikeJSON matches objects keyed by quoted strings. Nix sets never
// quote a key followed by a colon.
func looksLikeJSON(trimmed []byte) bool {
	if !bytes.HasPrefix(trimmed, []byte("{")) && !bytes.HasPrefix(trimmed, []byte("[")) {
		return false
	}
	return jsonKey.Match(trimmed)
}

//nolint:gochecknoglobals // Compiled once.
var jsonKey = regexp.MustCompile(`"[^"]*"\s*:`)

func normalize(lang string) string {
	if lang == "Shell" {
		return LangBash
	}
	return strings.ToLower(lang)
}
