// Package config loads labfit settings from defaults, labfit.yaml, LABFIT_
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	DefaultFile = "labfit.yaml"
	EnvPrefix   = "LABFIT_"
)

// Config holds the settings shared by every labfit command.
type Config struct {
	Method  string `koanf:"method" validate:"oneof=simple odr"`
	Solver  string `koanf:"solver" validate:"omitempty,oneof=lm bounded"`
	MaxIter int    `koanf:"max_iter" validate:"gte=1"`
	Seed    uint64 `koanf:"seed"`
	Workers int    `koanf:"workers" validate:"gte=1"`

	Digits int    `koanf:"digits" validate:"gte=1,lte=15"`
	Style  string `koanf:"style" validate:"oneof=auto fixed exp"`
	LaTeX  bool   `koanf:"latex"`

	Layout  string `koanf:"layout" validate:"oneof=vertical horizontal"`
	Delim   string `koanf:"delim"`
	Decimal string `koanf:"decimal" validate:"len=1"`
	Sheet   string `koanf:"sheet"`

	Colors []string `koanf:"colors" validate:"max=3"`
	Legend string   `koanf:"legend"`
	UseTeX bool     `koanf:"usetex"`

	// Out is the root of the dated run directories. Empty disables them.
	Out     string `koanf:"out"`
	Note    string `koanf:"note"`
	Verbose bool   `koanf:"verbose"`
}

// Defaults are the lowest-priority layer.
func Defaults() map[string]any {
	return map[string]any{
		"method":   "simple",
		"solver":   "",
		"max_iter": 1000,
		"seed":     0,
		"workers":  1,
		"digits":   2,
		"style":    "auto",
		"latex":    false,
		"layout":   "vertical",
		"delim":    "",
		"decimal":  ".",
		"sheet":    "",
		"colors":   []string{"blue", "red", "orange"},
		"legend":   "",
		"usetex":   false,
		"out":      "",
		"note":     "",
		"verbose":  false,
	}
}

var validate = validator.New()

// Load builds the configuration. cfgFile may be empty, in which case
// labfit.yaml is read from the working directory when present. Only flags
// the user changed override the other layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// LABFIT_MAX_ITER -> max_iter
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Method = strings.ToLower(cfg.Method)
	cfg.Style = strings.ToLower(cfg.Style)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, used, nil
}

// Validate checks every field against its allowed values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
