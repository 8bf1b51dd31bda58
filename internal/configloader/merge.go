package configloader

import (
	"maps"

	"github.com/yaklabco/gonixfmt/pkg/config"
)

// merge combines two configurations, with override taking precedence:
//   - scalars overwrite when non-zero in override
//   - pointers overwrite when non-nil
//   - slices replace entirely when non-nil
//   - the rules map is merged key by key
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.IndentWidth != 0 {
		result.IndentWidth = override.IndentWidth
	}
	if override.MaxBlankLines != nil {
		v := *override.MaxBlankLines
		result.MaxBlankLines = &v
	}
	if override.Markdown.Enabled != nil {
		v := *override.Markdown.Enabled
		result.Markdown.Enabled = &v
	}
	if override.Markdown.DetectUntagged != nil {
		v := *override.Markdown.DetectUntagged
		result.Markdown.DetectUntagged = &v
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// false is the zero value, so a later source can only switch these on.
	if override.Check {
		result.Check = true
	}
	if override.Diff {
		result.Diff = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}
	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}
	if override.Extensions != nil {
		result.Extensions = override.Extensions
	}
	if override.DisableRules != nil {
		result.DisableRules = override.DisableRules
	}

	result.Rules = mergeRules(result.Rules, override.Rules)
	return result
}

func mergeRules(base, override map[string]config.RuleConfig) map[string]config.RuleConfig {
	if base == nil && override == nil {
		return nil
	}
	result := make(map[string]config.RuleConfig, len(base)+len(override))
	maps.Copy(result, base)
	for name, rc := range override {
		if rc.Enabled == nil {
			if _, ok := result[name]; ok {
				continue
			}
		}
		result[name] = rc
	}
	return result
}

// MergeAll merges configurations in order, later ones taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	var result *config.Config
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}
