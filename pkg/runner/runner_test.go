package runner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/format"
	"github.com/yaklabco/gonixfmt/pkg/rules"
	"github.com/yaklabco/gonixfmt/pkg/runner"
)

func newRunner(t *testing.T) *runner.Runner {
	t.Helper()

	f, err := format.NewFormatter(rules.Default(), config.NewConfig())
	require.NoError(t, err)
	return runner.New(format.NewPipeline(f))
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()

	result, err := newRunner(t).Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.Stats.FilesDiscovered)
	assert.False(t, result.NeedsFormatting())
	assert.False(t, result.HasErrors())
}

func TestRunCheck(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{
		"a.nix":   "{a=1;}",
		"b.nix":   "{ }\n",
		"bad.nix": "{ = }",
	})

	result, err := newRunner(t).Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Format:     format.Options{Check: true},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 3)
	assert.Equal(t, []string{"a.nix", "b.nix", "bad.nix"}, rel(t, dir, []string{
		result.Files[0].Path, result.Files[1].Path, result.Files[2].Path,
	}))

	assert.True(t, result.Files[0].Result.Changed)
	assert.False(t, result.Files[1].Result.Changed)
	require.ErrorIs(t, result.Files[2].Error, format.ErrParseFailure)

	assert.Equal(t, runner.Stats{
		FilesDiscovered: 3,
		FilesProcessed:  2,
		FilesChanged:    1,
		FilesErrored:    1,
		Edits:           result.Files[0].Result.Edits,
	}, result.Stats)
	assert.True(t, result.NeedsFormatting())
	assert.True(t, result.HasErrors())
	assert.Len(t, result.Errors(), 1)

	got, err := os.ReadFile(filepath.Join(dir, "a.nix"))
	require.NoError(t, err)
	assert.Equal(t, "{a=1;}", string(got), "check mode does not write")
}

func TestRunWrites(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{
		"a.nix":     "{a=1;}",
		"README.md": "```nix\n{a=1;}\n```\n",
	})

	opts := runner.OptionsFromConfig(nil, nil)
	opts.WorkingDir = dir
	opts.Markdown = true
	opts.Format = format.DefaultOptions()

	result, err := newRunner(t).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.FilesWritten)

	got, err := os.ReadFile(filepath.Join(dir, "a.nix"))
	require.NoError(t, err)
	assert.Equal(t, "{ a = 1; }\n", string(got))

	got, err = os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "```nix\n{ a = 1; }\n```\n", string(got))
}

func TestRunSerialMatchesParallel(t *testing.T) {
	t.Parallel()

	files := make(map[string]string)
	for i := range 20 {
		files[fmt.Sprintf("f%02d.nix", i)] = fmt.Sprintf("{a=%d;}", i)
	}
	dir := tree(t, files)
	r := newRunner(t)

	run := func(jobs int) *runner.Result {
		result, err := r.Run(context.Background(), runner.Options{
			WorkingDir: dir,
			Jobs:       jobs,
			Format:     format.Options{Diff: true},
		})
		require.NoError(t, err)
		return result
	}

	serial, parallel := run(1), run(8)
	require.Len(t, parallel.Files, len(serial.Files))
	assert.Equal(t, serial.Stats, parallel.Stats)
	for i := range serial.Files {
		assert.Equal(t, serial.Files[i].Path, parallel.Files[i].Path)
		assert.Equal(t, serial.Files[i].Result.Formatted, parallel.Files[i].Result.Formatted)
		assert.Equal(t, serial.Files[i].Result.Diff.String(), parallel.Files[i].Result.Diff.String())
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	dir := tree(t, map[string]string{"a.nix": "{ }"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t).Run(ctx, runner.Options{WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Ignore = []string{"result/**"}
	cfg.Jobs = 3
	cfg.Diff = true

	opts := runner.OptionsFromConfig(cfg, []string{"pkgs"})
	assert.Equal(t, []string{"pkgs"}, opts.Paths)
	assert.Equal(t, []string{".nix"}, opts.Extensions)
	assert.Equal(t, []string{"result/**"}, opts.ExcludeGlobs)
	assert.Equal(t, 3, opts.Jobs)
	assert.False(t, opts.Markdown)
	assert.True(t, opts.Format.Diff)
}
