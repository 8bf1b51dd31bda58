package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gonixfmt/internal/logging"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// ruleInfo is a rule in JSON and YAML listings.
type ruleInfo struct {
	Name        string   `json:"name"        yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Passes      []string `json:"passes"      yaml:"passes"`
}

func newRulesCommand() *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List formatting rules",
		Long: `List the spacing and indentation rules and fix-ups gonixfmt applies.
Any rule can be disabled by name with --disable or in the rules section of
the configuration file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listRules(cmd.OutOrStdout(), rules.Default(), outFormat)
		},
	}

	cmd.Flags().StringVar(&outFormat, "format", formatText, "output format: text, json, yaml")
	return cmd
}

func listRules(out io.Writer, registry *rules.Registry, outFormat string) error {
	infos := registry.Infos()
	listed := make([]ruleInfo, 0, len(infos))
	for _, info := range infos {
		passes := make([]string, 0, len(info.Passes))
		for _, pass := range info.Passes {
			passes = append(passes, string(pass))
		}
		listed = append(listed, ruleInfo{Name: info.Name, Description: info.Description, Passes: passes})
	}

	switch outFormat {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(listed); err != nil {
			return fmt.Errorf("encoding rules: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(listed); err != nil {
			return fmt.Errorf("encoding rules: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding rules: %w", err)
		}
	case formatText, "":
		logger := logging.NewInteractive()
		logger.SetOutput(out)
		logger.Info("available rules")
		for _, rule := range listed {
			logger.Info(rule.Name,
				logging.FieldPass, strings.Join(rule.Passes, ","),
				logging.FieldDescription, rule.Description)
		}
	default:
		return withCode(ExitInvalidUsage, fmt.Errorf("%w: unknown format %q", ErrInvalidUsage, outFormat))
	}
	return nil
}
