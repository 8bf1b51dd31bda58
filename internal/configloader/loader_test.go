package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func env(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

// isolated loads with only project and explicit sources enabled.
func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		Getenv:             env(nil),
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	result, err := Load(context.Background(), isolated(dir))
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), result.Config)
	assert.Empty(t, result.LoadedFrom)
	assert.Empty(t, result.Warnings)
}

func TestLoadProjectConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, ".gonixfmt.yml"), `
indent_width: 4
max_blank_lines: 0
extensions: [".nix", ".nix.in"]
markdown:
  enabled: true
rules:
  assignment:
    enabled: false
  no-such-rule:
    enabled: false
`)
	sub := filepath.Join(dir, "pkgs", "hello")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	result, err := Load(context.Background(), isolated(sub))
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, []string{filepath.Join(dir, ".gonixfmt.yml")}, result.LoadedFrom)
	assert.Equal(t, 4, cfg.EffectiveIndentWidth())
	assert.Equal(t, 0, cfg.EffectiveMaxBlankLines())
	assert.Equal(t, []string{".nix", ".nix.in"}, cfg.Extensions)
	assert.True(t, cfg.MarkdownEnabled())
	assert.Equal(t, []string{rules.Assignment}, cfg.DisabledRules())

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `unknown rule "no-such-rule"`)
}

func TestLoadStopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gonixfmt.yml"), "indent_width: 4\n")
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	path, err := FindProjectConfig(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLoadPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, ".gonixfmt.yml"), "indent_width: 4\nignore: [\"result/**\"]\n")
	explicit := filepath.Join(dir, "ci.yml")
	writeFile(t, explicit, "indent_width: 3\nmax_blank_lines: 2\n")

	opts := isolated(dir)
	opts.ExplicitPath = explicit
	opts.Getenv = env(map[string]string{
		"GONIXFMT_MAX_BLANK_LINES": "3",
		"GONIXFMT_JOBS":            "2",
		"GONIXFMT_IGNORE":          "a/**, b/** ,",
	})
	opts.CLIConfig = &config.Config{Jobs: 5, Check: true}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	cfg := result.Config
	assert.Len(t, result.LoadedFrom, 2)
	assert.Equal(t, 3, cfg.IndentWidth, "explicit file beats project file")
	assert.Equal(t, 3, cfg.EffectiveMaxBlankLines(), "environment beats files")
	assert.Equal(t, []string{"a/**", "b/**"}, cfg.Ignore)
	assert.Equal(t, 5, cfg.Jobs, "flags beat environment")
	assert.True(t, cfg.Check)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		env     map[string]string
		cli     *config.Config
		wantMsg string
	}{
		{name: "unknown key", file: "indent: 2\n", wantMsg: "field indent not found"},
		{name: "negative blank lines", file: "max_blank_lines: -1\n", wantMsg: "max_blank_lines"},
		{name: "huge indent", file: "indent_width: 99\n", wantMsg: "indent_width"},
		{name: "bad glob", file: "ignore: [\"[x\"]\n", wantMsg: "ignore[0]"},
		{name: "bad extension", file: "extensions: [nix]\n", wantMsg: "must start with a dot"},
		{name: "bad backup mode", file: "backups:\n  mode: copy\n", wantMsg: "backups.mode"},
		{name: "bad env bool", env: map[string]string{"GONIXFMT_CHECK": "maybe"}, wantMsg: "GONIXFMT_CHECK"},
		{name: "bad env format", env: map[string]string{"GONIXFMT_FORMAT": "xml"}, wantMsg: "invalid format"},
		{name: "unknown disabled rule", cli: &config.Config{DisableRules: []string{"nope"}}, wantMsg: `unknown rule "nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
			if tt.file != "" {
				writeFile(t, filepath.Join(dir, ".gonixfmt.yml"), tt.file)
			}
			opts := isolated(dir)
			opts.Getenv = env(tt.env)
			opts.CLIConfig = tt.cli

			_, err := Load(context.Background(), opts)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.True(t, IsConfigError(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadMissingExplicit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := isolated(dir)
	opts.ExplicitPath = filepath.Join(dir, "missing.yml")

	_, err := Load(context.Background(), opts)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, IsConfigError(err))
}

func TestLoadCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(t.TempDir()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	off, on := false, true
	base := config.NewConfig()
	base.Rules["assignment"] = config.RuleConfig{Enabled: &off}
	base.Ignore = []string{"a"}

	got := MergeAll(base, &config.Config{
		Markdown: config.MarkdownConfig{Enabled: &on},
		Rules:    map[string]config.RuleConfig{"semicolon": {Enabled: &off}, "assignment": {}},
	}, nil)

	assert.Equal(t, []string{"assignment", "semicolon"}, got.DisabledRules())
	assert.Equal(t, []string{"a"}, got.Ignore)
	assert.True(t, got.MarkdownEnabled())
	assert.Equal(t, config.DefaultIndentWidth, got.IndentWidth)
	assert.Equal(t, []string{"assignment"}, base.DisabledRules(), "base is not modified")
	assert.Nil(t, MergeAll())
}

func TestLoadFromEnv(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	err := loadFromEnv(cfg, env(map[string]string{
		"GONIXFMT_INDENT_WIDTH":    "4",
		"GONIXFMT_MARKDOWN":        "1",
		"GONIXFMT_DISABLE":         "assignment,semicolon",
		"GONIXFMT_BACKUPS_ENABLED": "true",
		"GONIXFMT_FORMAT":          "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.IndentWidth)
	assert.True(t, cfg.MarkdownEnabled())
	assert.Equal(t, []string{"assignment", "semicolon"}, cfg.DisableRules)
	assert.True(t, cfg.BackupsEnabled())
	assert.Equal(t, config.FormatJSON, cfg.Format)

	require.Error(t, loadFromEnv(cfg, env(map[string]string{"GONIXFMT_JOBS": "many"})))
	assert.Len(t, ListEnvVars(), len(envVars))
}
