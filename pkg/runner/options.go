// Package runner formats many files concurrently.
package runner

import (
	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/format"
)

// Options controls a multi-file run.
type Options struct {
	// Paths are files or directories to process. Defaults to ".".
	Paths []string

	// WorkingDir resolves relative Paths. Defaults to the process working
	// directory.
	WorkingDir string

	// Extensions selects files when walking directories (lowercase, with
	// leading dot). Defaults to DefaultExtensions().
	Extensions []string

	// Markdown adds Markdown files to directory walks.
	Markdown bool

	// ExcludeGlobs skip matching files and directories, relative to
	// WorkingDir. Patterns without a slash also match base names.
	ExcludeGlobs []string

	// FollowSymlinks traverses directory symlinks.
	FollowSymlinks bool

	// Jobs caps concurrent workers. 0 or negative means runtime.NumCPU().
	Jobs int

	// Format is passed to the pipeline for every file.
	Format format.Options
}

// DefaultExtensions returns the extensions formatted by default.
func DefaultExtensions() []string {
	return []string{".nix"}
}

// MarkdownExtensions returns the extensions of Markdown files.
func MarkdownExtensions() []string {
	return []string{".md", ".markdown"}
}

// OptionsFromConfig builds run options for paths from a configuration.
func OptionsFromConfig(cfg *config.Config, paths []string) Options {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Options{
		Paths:        paths,
		Extensions:   cfg.Extensions,
		Markdown:     cfg.MarkdownEnabled(),
		ExcludeGlobs: cfg.Ignore,
		Jobs:         cfg.Jobs,
		Format:       format.OptionsFromConfig(cfg),
	}
}

func (o Options) effectiveExtensions() []string {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	if o.Markdown {
		exts = append(exts[:len(exts):len(exts)], MarkdownExtensions()...)
	}
	return exts
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
