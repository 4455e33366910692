// Package config loads and saves a project's configuration object: a small,
// fixed set of keys, no more. Project-directory scaffolding (creating the
// folder, a README, the file itself) is out of scope; this package only
// loads/saves a config object a caller already has a path to.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ProjectConfig is the persisted project configuration.
type ProjectConfig struct {
	ProjectName               string
	Slug                      string
	DefaultSourceLocale       string
	DefaultTargetLocale       string
	EnabledLocales            []string
	GlobalGameGlossaryEnabled bool
	ModelPolicy               map[string]string
	TranslationStyleHints     string
}

// DefaultModelPolicy routes every task to the mock provider, the safe
// starting point before an operator configures real models.
func DefaultModelPolicy() map[string]string {
	return map[string]string{
		"translator":      "mock",
		"reviewer":        "mock",
		"schema_resolver": "mock",
	}
}

// DefaultStyleHints is used when a project config omits
// translation_style_hints.
const DefaultStyleHints = "informal, use Du for German"

// Load reads a project's config file at path into a ProjectConfig. Keys
// absent from the file fall back to their defaults rather than erroring,
// so a minimally-written config is still usable.
func Load(path string) (*ProjectConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("global_game_glossary_enabled", true)
	v.SetDefault("model_policy", DefaultModelPolicy())
	v.SetDefault("translation_style_hints", DefaultStyleHints)
	v.SetDefault("enabled_locales", []string{})

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read project config %s: %w", path, err)
	}

	return &ProjectConfig{
		ProjectName:               v.GetString("project_name"),
		Slug:                      v.GetString("slug"),
		DefaultSourceLocale:       v.GetString("default_source_locale"),
		DefaultTargetLocale:       v.GetString("default_target_locale"),
		EnabledLocales:            v.GetStringSlice("enabled_locales"),
		GlobalGameGlossaryEnabled: v.GetBool("global_game_glossary_enabled"),
		ModelPolicy:               v.GetStringMapString("model_policy"),
		TranslationStyleHints:     v.GetString("translation_style_hints"),
	}, nil
}

// SaveModelPolicy rewrites only the model_policy key of the config file at
// path, leaving every other key as found. This is the one field the core
// ever writes back; locales, the glossary flag, and style hints are all
// operator-edited out of band.
func SaveModelPolicy(path string, modelPolicy map[string]string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read project config %s: %w", path, err)
	}
	v.Set("model_policy", modelPolicy)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("write project config %s: %w", path, err)
	}
	return nil
}
