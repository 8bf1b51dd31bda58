package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gonixfmt/internal/cli"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	require.NotNil(t, cmd)
	assert.Equal(t, "gonixfmt", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"format", "check", "rules", "init", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	fmtCmd, _, err := cmd.Find([]string{"fmt"})
	require.NoError(t, err)
	assert.Equal(t, "format", fmtCmd.Name())

	for _, name := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestFormatCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	formatCmd, _, err := cmd.Find([]string{"format"})
	require.NoError(t, err)

	for _, name := range []string{"check", "diff", "stdin", "jobs", "ignore", "disable", "output", "markdown", "no-backups"} {
		assert.NotNil(t, formatCmd.Flags().Lookup(name), name)
	}
	assert.Contains(t, formatCmd.Flags().Lookup("output").Usage, "summary")
	require.NoError(t, formatCmd.Args(formatCmd, []string{"a.nix", "pkgs/"}))

	checkCmd, _, err := cmd.Find([]string{"check"})
	require.NoError(t, err)
	assert.Nil(t, checkCmd.Flags().Lookup("check"))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")
	assert.Contains(t, out.String(), "abc123")
}

func TestHelpOutput(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"format", "--help", "--color", "never"})

	require.NoError(t, cmd.Execute())
	help := out.String()
	assert.Contains(t, help, "Format Nix files in place.")
	assert.Contains(t, help, "Usage:\n  gonixfmt format [paths...]")
	assert.Contains(t, help, "Aliases:\n  fmt")
	assert.Regexp(t, `--check\s+report files that need formatting`, help)
	assert.Regexp(t, `-j, --jobs int\s+number of parallel workers`, help)
	assert.Contains(t, help, "Global Flags:")
}
