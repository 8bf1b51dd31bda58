package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gonixfmt/internal/logging"
	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

type initFlags struct {
	force  bool
	full   bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gonixfmt configuration file",
		Long: `Create a .gonixfmt.yml configuration file in the current directory
with the default settings, commented.

Examples:
  gonixfmt init                      Create a minimal .gonixfmt.yml
  gonixfmt init --full               List every rule in the file
  gonixfmt init --output custom.yml  Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite an existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "List every rule with its description")
	cmd.Flags().StringVarP(&flags.output, "output", "o", ".gonixfmt.yml", "Output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewInteractive()
	logger.SetOutput(cmd.OutOrStdout())

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return withCode(ExitInvalidUsage,
				fmt.Errorf("%w: file %q already exists; use --force to overwrite", ErrInvalidUsage, flags.output))
		}
		logger.Warn("overwriting existing file", logging.FieldPath, flags.output)
	}

	opts := config.TemplateOptions{Full: flags.full}
	if flags.full {
		for _, info := range rules.Default().Infos() {
			opts.Rules = append(opts.Rules, config.RuleInfo{Name: info.Name, Description: info.Description})
		}
	}

	if err := os.WriteFile(absPath, config.GenerateTemplate(opts), configFilePermissions); err != nil {
		return withCode(ExitIOError, fmt.Errorf("write file: %w", err))
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'gonixfmt rules' to see the rules you can disable")
	return nil
}
