package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gonixfmt/internal/configloader"
	"github.com/yaklabco/gonixfmt/internal/logging"
	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/format"
	"github.com/yaklabco/gonixfmt/pkg/reporter"
	"github.com/yaklabco/gonixfmt/pkg/rules"
	"github.com/yaklabco/gonixfmt/pkg/runner"
)

type formatFlags struct {
	output        string
	ignore        []string
	disable       []string
	markdown      bool
	stdin         bool
	stdinFilename string
	verbose       bool
	compact       bool
}

func newFormatCommand() *cobra.Command {
	var cfg config.Config
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:     "format [paths...]",
		Aliases: []string{"fmt"},
		Short:   "Format Nix files in place",
		Long:    formatLongDescription,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, &cfg, flags)
		},
	}

	addFormatFlags(cmd, &cfg, flags)
	return cmd
}

func newCheckCommand() *cobra.Command {
	cfg := config.Config{Check: true}
	flags := &formatFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report Nix files that need formatting",
		Long: `Report Nix files that need formatting without changing them.
Equivalent to 'gonixfmt format --check'. Exits with status 1 when any
file is not formatted.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Check = true
			return runFormat(cmd, args, &cfg, flags)
		},
	}

	addFormatFlags(cmd, &cfg, flags)
	return cmd
}

const formatLongDescription = `Format Nix files in place.

By default, formats every .nix file under the current directory. Specify
paths to format specific files or directories. Hidden directories are
skipped.

Examples:
  gonixfmt format                     # Format the current directory
  gonixfmt format pkgs/ default.nix   # Format selected paths
  gonixfmt format --check             # Exit 1 if anything needs formatting
  gonixfmt format --diff              # Print changes instead of writing
  gonixfmt format --markdown docs/    # Also format nix blocks in Markdown
  gonixfmt format --stdin < a.nix     # Format stdin to stdout
  gonixfmt format --output json       # Machine-readable report`

func addFormatFlags(cmd *cobra.Command, cfg *config.Config, flags *formatFlags) {
	if cmd.Name() != "check" {
		cmd.Flags().BoolVar(&cfg.Check, "check", false, "report files that need formatting without writing them")
	}
	cmd.Flags().BoolVar(&cfg.Diff, "diff", false, "print a unified diff instead of writing files")
	cmd.Flags().IntVarP(&cfg.Jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.disable, "disable", nil, "rule names to disable")
	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "also format nix code blocks in Markdown files")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "report format: text, json, diff, summary")
	cmd.Flags().BoolVar(&flags.stdin, "stdin", false, "read source from stdin and write the result to stdout")
	cmd.Flags().StringVar(&flags.stdinFilename, "stdin-filename", format.StdinPath,
		"name used for stdin in messages; a .md name formats it as Markdown")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list every file, with the rules that changed it")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "compact JSON output")
}

// cliConfig collects the flags that were set into a config overlay.
func cliConfig(cmd *cobra.Command, cfg *config.Config, flags *formatFlags) *config.Config {
	overlay := cfg.Clone()
	if cmd.Flags().Changed("ignore") {
		overlay.Ignore = flags.ignore
	}
	if cmd.Flags().Changed("disable") {
		overlay.DisableRules = flags.disable
	}
	if cmd.Flags().Changed("markdown") {
		enabled := flags.markdown
		overlay.Markdown.Enabled = &enabled
	}
	if flags.output != "" {
		overlay.Format = config.OutputFormat(flags.output)
	}
	return overlay
}

func runFormat(cmd *cobra.Command, args []string, cfg *config.Config, flags *formatFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	if flags.stdin && len(args) > 0 {
		return withCode(ExitInvalidUsage, fmt.Errorf("%w: --stdin takes no paths", ErrInvalidUsage))
	}

	workDir, err := os.Getwd()
	if err != nil {
		return withCode(ExitIOError, fmt.Errorf("get working directory: %w", err))
	}

	finalCfg, err := loadConfig(ctx, cmd, workDir, cliConfig(cmd, cfg, flags))
	if err != nil {
		return err
	}

	formatter, err := format.NewFormatter(rules.Default(), finalCfg)
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	pipeline := format.NewPipeline(formatter)

	if flags.stdin {
		return runStdin(ctx, cmd, pipeline, finalCfg, flags.stdinFilename)
	}

	runOpts := runner.OptionsFromConfig(finalCfg, args)
	runOpts.WorkingDir = workDir

	logger.Debug("starting format run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, workDir,
		logging.FieldJobs, runOpts.Jobs,
		logging.FieldCheck, finalCfg.Check)

	result, err := runner.New(pipeline).Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("format run failed"), err)
	}

	rep, err := newReporter(cmd, finalCfg, flags, workDir)
	if err != nil {
		return err
	}
	if _, err := rep.Report(ctx, result); err != nil {
		return withCode(ExitIOError, fmt.Errorf("report results: %w", err))
	}

	return runError(result, finalCfg.Check)
}

func loadConfig(ctx context.Context, cmd *cobra.Command, workDir string, overlay *config.Config) (*config.Config, error) {
	logger := logging.FromContext(ctx)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    overlay,
	})
	if err != nil {
		code := ExitConfigError
		if !configloader.IsConfigError(err) {
			code = ExitIOError
		}
		return nil, withCode(code, errors.Join(errors.New("failed to load configuration"), err))
	}

	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}
	if len(loaded.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldFiles, loaded.LoadedFrom)
	}
	return loaded.Config, nil
}

func newReporter(cmd *cobra.Command, cfg *config.Config, flags *formatFlags, workDir string) (reporter.Reporter, error) {
	outFormat := reporter.Format(cfg.Format)
	if cfg.Diff && flags.output == "" {
		outFormat = reporter.FormatDiff
	}
	outFormat, err := reporter.ParseFormat(string(outFormat))
	if err != nil {
		return nil, withCode(ExitInvalidUsage, fmt.Errorf("%w: %w", ErrInvalidUsage, err))
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      outFormat,
		Color:       colorMode,
		Verbose:     flags.verbose,
		ShowSummary: true,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("create reporter: %w", err)
	}
	return rep, nil
}

// runStdin formats standard input. The result goes to stdout unless check
// or diff mode is on.
func runStdin(ctx context.Context, cmd *cobra.Command, pipeline *format.Pipeline, cfg *config.Config, name string) error {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return withCode(ExitInvalidUsage,
			fmt.Errorf("%w: --stdin refuses to read from a terminal; pipe a file in", ErrInvalidUsage))
	}

	src, err := io.ReadAll(in)
	if err != nil {
		return withCode(ExitIOError, fmt.Errorf("read stdin: %w", err))
	}

	res, err := pipeline.ProcessContent(ctx, name, src, format.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, blockErr := range res.BlockErrors {
		logging.FromContext(ctx).Warn("code block skipped",
			logging.FieldPath, name, logging.FieldLine, blockErr.Line, logging.FieldError, blockErr.Err)
	}

	switch {
	case cfg.Diff:
		if res.Diff.HasChanges() {
			if _, err := io.WriteString(out, res.Diff.String()); err != nil {
				return withCode(ExitIOError, fmt.Errorf("write diff: %w", err))
			}
		}
	case cfg.Check:
	default:
		if _, err := out.Write(res.Formatted); err != nil {
			return withCode(ExitIOError, fmt.Errorf("write stdout: %w", err))
		}
	}

	if cfg.Check && res.Changed {
		return ErrNeedsFormatting
	}
	return nil
}
