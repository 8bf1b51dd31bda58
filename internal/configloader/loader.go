// Package configloader resolves the gonixfmt configuration: it discovers
// system, user and project files, applies GONIXFMT_* environment variables
// and CLI flags in precedence order, and validates the result.
package configloader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/gonixfmt/internal/logging"
	"github.com/yaklabco/gonixfmt/pkg/config"
	"github.com/yaklabco/gonixfmt/pkg/rules"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// WorkingDir is where the project config search starts. Defaults to the
	// current directory.
	WorkingDir string

	// ExplicitPath is a config file given with --config. It is loaded after
	// the discovered files.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// Registry validates rule names. Nil means rules.Default().
	Registry *rules.Registry

	// CLIConfig holds values from command-line flags. It takes precedence
	// over every other source.
	CLIConfig *config.Config

	// Getenv overrides os.Getenv.
	Getenv func(string) string
}

// LoadResult contains the resolved configuration and where it came from.
type LoadResult struct {
	Config *config.Config

	Paths *ConfigPaths

	// LoadedFrom lists the files that were loaded, lowest precedence first.
	LoadedFrom []string

	// Warnings are non-fatal findings, such as unknown rule names.
	Warnings []string
}

// Load resolves the final configuration. Precedence, highest first:
//  1. CLI flags (opts.CLIConfig)
//  2. Environment variables (GONIXFMT_*)
//  3. Explicit config file (opts.ExplicitPath)
//  4. Project config (.gonixfmt.yml, upward search)
//  5. User config ($XDG_CONFIG_HOME/gonixfmt/config.yaml)
//  6. System config (/etc/gonixfmt/config.yaml)
//  7. Defaults
//
// Invalid values are errors wrapping ErrInvalidConfig.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	logger := logging.FromContext(ctx)

	registry := opts.Registry
	if registry == nil {
		registry = rules.Default()
	}

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	sources := []struct {
		name string
		path string
		skip bool
	}{
		{"system", paths.System, opts.IgnoreSystemConfig},
		{"user", paths.User, opts.IgnoreUserConfig},
		{"project", paths.Project, opts.IgnoreProjectConfig},
		{"explicit", paths.Explicit, false},
	}
	for _, src := range sources {
		if src.skip || src.path == "" {
			continue
		}
		fileCfg, err := loadConfigFile(src.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", src.name, err)
		}
		validation := ValidateWithFile(fileCfg, registry, src.path)
		if !validation.Valid() {
			return nil, validation.Err()
		}
		for _, w := range validation.Warnings {
			result.Warnings = append(result.Warnings, w.Error())
		}

		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, src.path)
		logger.Debug("loaded config", logging.FieldPath, src.path)
	}

	if !opts.IgnoreEnv {
		getenv := opts.Getenv
		if getenv == nil {
			getenv = os.Getenv
		}
		if err := loadFromEnv(cfg, getenv); err != nil {
			return nil, fmt.Errorf("%w: environment: %w", ErrInvalidConfig, err)
		}
	}

	cfg = merge(cfg, opts.CLIConfig)

	// Unknown rule names in files were reported above; anything failing
	// here came from the environment or the command line.
	if validation := Validate(cfg, registry); !validation.Valid() {
		return nil, validation.Err()
	}
	pruneUnknownRules(cfg, registry)

	result.Config = cfg
	return result, nil
}

// loadConfigFile reads one YAML config file. Unknown keys are errors.
func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg, err := config.FromYAML(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// IsConfigError reports whether err stems from invalid configuration rather
// than from I/O.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
