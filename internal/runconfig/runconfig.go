// Package runconfig loads the batch CLI's run configuration: where to read
// engine input from, where to write augmented output, and which processor
// flags to enable for the run (SPEC_FULL.md §A.2).
//
// Grounded on the teacher's cmd/server/main.go, which loads a viper-backed
// config file before constructing its logger and every other dependency;
// this package plays the same "config.Load first" role for the batch CLI,
// adapted from a long-lived server's config (database DSN, session lease
// periods, auth secrets) to one encounter run's file paths and flags.
package runconfig

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// LoggingConfig mirrors the teacher's config.LoggingConfig shape (level +
// format), consumed by internal/obslog.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RunConfig is the batch CLI's run configuration (SPEC_FULL.md §A.2,
// §C.1).
type RunConfig struct {
	InputPath  string `mapstructure:"input"`
	OutputPath string `mapstructure:"output"`

	InferThreatReduction bool   `mapstructure:"infer_threat_reduction"`
	Target               string `mapstructure:"target"`
	Format               string `mapstructure:"format"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// defaults mirrors the teacher's config package convention of seeding
// viper's defaults before any file or flag overlay is read.
func defaults(v *viper.Viper) {
	v.SetDefault("input", "-")
	v.SetDefault("output", "-")
	v.SetDefault("infer_threat_reduction", false)
	v.SetDefault("format", "json")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load builds a RunConfig from, in ascending precedence: built-in defaults,
// an optional YAML config file, then THREATENGINE_* environment variables,
// then flags explicitly set on fs (SPEC_FULL.md §A.2).
func Load(configPath string, fs *pflag.FlagSet) (RunConfig, error) {
	v := viper.New()
	defaults(v)

	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return RunConfig{}, fmt.Errorf("reading run config %q: %w", configPath, err)
			}
		}
	}

	if fs != nil {
		binds := map[string]string{
			"input":                  "input",
			"output":                 "output",
			"infer_threat_reduction": "infer-threat-reduction",
			"target":                 "target",
			"format":                 "format",
		}
		for key, flagName := range binds {
			if flag := fs.Lookup(flagName); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return RunConfig{}, fmt.Errorf("binding flag %q: %w", flagName, err)
				}
			}
		}
	}

	v.SetEnvPrefix("THREATENGINE")
	v.AutomaticEnv()

	var cfg RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RunConfig{}, fmt.Errorf("unmarshalling run config: %w", err)
	}
	return cfg, nil
}

// Flags registers the batch CLI's flags onto fs. Load binds each one to its
// RunConfig key through an explicit flag-name map (for example
// infer-threat-reduction feeds infer_threat_reduction).
func Flags(fs *pflag.FlagSet) {
	fs.String("input", "-", "path to engine input JSON, or - for stdin")
	fs.String("output", "-", "path to write augmented output JSON, or - for stdout")
	fs.Bool("infer-threat-reduction", false, "run the full inference processor set (party-detection, tranquil-air, minmax-salvation)")
	fs.String("target", "", "actor id to write a per-ability breakdown for; empty skips the breakdown")
	fs.String("format", "json", "ability-breakdown export format: json or csv")
	fs.String("config", "", "path to a run config YAML file")
}
