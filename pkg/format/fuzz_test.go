package format_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"unicode"

	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/format"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

// significant drops whitespace and quotes, which formatting may add or
// remove, leaving the bytes it must preserve.
func significant(b []byte) []byte {
	return bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '"' {
			return -1
		}
		return r
	}, b)
}

func FuzzFormatIdempotent(f *testing.F) {
	for _, seed := range []string{
		unformatted,
		"x:y:x+y",
		"{a,b?2,...}@c:a",
		"let x=1;in x",
		"if a then b else c",
		"[1 2 ./p https://r.s]",
		"{\n  a = ''\n    x\n  '';\n}",
		"with pkgs; [ hello ]",
		"/*",
		"1 /* a",
		"\"abc",
	} {
		f.Add([]byte(seed))
	}

	formatter, err := format.NewFormatter(rules.Default(), config.NewConfig())
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		out, err := formatter.Format(context.Background(), "fuzz.nix", data)
		if errors.Is(err, format.ErrNotIdempotent) {
			t.Fatalf("not idempotent for %q: %v", data, err)
		}
		if err != nil {
			return
		}
		if !bytes.Equal(significant(out.Content), significant(data)) {
			t.Fatalf("formatting changed more than whitespace:\n%q\n%q", data, out.Content)
		}
	})
}
