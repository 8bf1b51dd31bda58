package rules_test

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/engine"
	"github.com/yaklabco/gonixfmt/pkg/parser/nix"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

// update rewrites golden files instead of comparing.
// Usage: go test ./pkg/rules/... -run TestGolden -update.
var update = flag.Bool("update", false, "update golden files")

type goldenCase struct {
	name   string
	input  string
	golden string
}

func testdataDir(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get test file path")
	}
	return filepath.Join(filepath.Dir(filename), "testdata")
}

// discoverCases pairs every NAME.input.nix with NAME.golden.nix.
func discoverCases(t *testing.T) []goldenCase {
	t.Helper()

	dir := testdataDir(t)
	inputs, err := filepath.Glob(filepath.Join(dir, "*.input.nix"))
	require.NoError(t, err)

	cases := make([]goldenCase, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSuffix(filepath.Base(in), ".input.nix")
		cases = append(cases, goldenCase{
			name:   name,
			input:  in,
			golden: filepath.Join(dir, name+".golden.nix"),
		})
	}
	return cases
}

// formatDefault formats src with the built-in rules.
func formatDefault(t *testing.T, path string, src []byte) string {
	t.Helper()

	tree, err := nix.New().Parse(context.Background(), path, src)
	require.NoError(t, err)

	diff, err := engine.Format(context.Background(), tree, rules.Spacing(), rules.Indent(), engine.DefaultOptions())
	require.NoError(t, err)
	return string(diff.Apply(tree.Content))
}

func TestGolden(t *testing.T) {
	cases := discoverCases(t)
	if len(cases) == 0 {
		t.Skip("no golden cases; add testdata/*.input.nix")
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, err := os.ReadFile(tc.input)
			require.NoError(t, err)

			got := formatDefault(t, tc.input, src)

			if *update {
				require.NoError(t, os.WriteFile(tc.golden, []byte(got), 0o600))
				return
			}

			want, err := os.ReadFile(tc.golden)
			require.NoError(t, err, "missing golden file; run with -update")
			assert.Equal(t, string(want), got)
		})
	}
}

// TestGoldenIdempotent formats every input twice and expects the second run
// to change nothing.
func TestGoldenIdempotent(t *testing.T) {
	for _, tc := range discoverCases(t) {
		t.Run(tc.name, func(t *testing.T) {
			src, err := os.ReadFile(tc.input)
			require.NoError(t, err)

			once := formatDefault(t, tc.input, src)
			twice := formatDefault(t, tc.input, []byte(once))
			assert.Equal(t, once, twice)
		})
	}
}

// TestGoldenPreservesCode checks that formatting only moves whitespace.
func TestGoldenPreservesCode(t *testing.T) {
	strip := func(s string) string {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	}

	for _, tc := range discoverCases(t) {
		t.Run(tc.name, func(t *testing.T) {
			src, err := os.ReadFile(tc.input)
			require.NoError(t, err)

			got := formatDefault(t, tc.input, src)
			assert.Equal(t, strip(string(src)), strip(got))
		})
	}
}
