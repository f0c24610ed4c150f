package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Mishamax/maxcalc/pkg/maxcalc/evaluator"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/maxcalc"
	"github.com/Mishamax/maxcalc/pkg/maxcalc/number"
)

// Load reads configuration with ENV interpolation and ENV overrides.
// If configPath is empty, it searches default locations; when no file is
// found the defaults are used.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		// Interpolate environment variables
		data = interpolateEnv(data, getenv)

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}

		cfg.Path = absPath
		cfg.BaseDir = filepath.Dir(absPath)
	}

	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}

	// Resolve relative file paths against the config file directory
	if cfg.BaseDir != "" {
		if cfg.Journal.Path != "" && !filepath.IsAbs(cfg.Journal.Path) {
			cfg.Journal.Path = filepath.Join(cfg.BaseDir, cfg.Journal.Path)
		}
		if cfg.REPL.HistoryFile != "" && !filepath.IsAbs(cfg.REPL.HistoryFile) {
			cfg.REPL.HistoryFile = filepath.Join(cfg.BaseDir, cfg.REPL.HistoryFile)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// overrideKeys lists the environment variables bound by env struct tags.
var overrideKeys = []string{
	"MAXCALC_ANGLE",
	"MAXCALC_COMPLEX",
	"MAXCALC_PRECISION",
	"MAXCALC_LOCALE",
	"MAXCALC_JOURNAL",
	"MAXCALC_LOG_LEVEL",
	"MAXCALC_LOG_FORMAT",
}

// applyEnv overrides fields tagged with env from the environment.
func applyEnv(cfg *Config, getenv func(string) string) error {
	environ := make(map[string]string)
	for _, key := range overrideKeys {
		if v := getenv(key); v != "" {
			environ[key] = v
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > MAXCALC_CONFIG env > ./maxcalc.yaml > ~/.config/maxcalc/maxcalc.yaml
// An empty result with a nil error means no file was found.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try MAXCALC_CONFIG environment variable
	if envPath := getenv("MAXCALC_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("MAXCALC_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	// Try ./maxcalc.yaml
	if _, err := os.Stat("maxcalc.yaml"); err == nil {
		return "maxcalc.yaml", nil
	}

	// Try ~/.config/maxcalc/maxcalc.yaml
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "maxcalc", "maxcalc.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Validate checks the configuration and reports every problem at once.
func Validate(cfg *Config) error {
	var errs []string

	if _, err := evaluator.ParseAngleMode(cfg.Engine.Angle); err != nil {
		errs = append(errs, fmt.Sprintf("invalid engine.angle: %s (must be rad, deg or grad)", cfg.Engine.Angle))
	}

	if cfg.Output.Precision < 1 || cfg.Output.Precision > number.MaxPrecision {
		errs = append(errs, fmt.Sprintf("invalid output.precision: %d (must be 1-%d)", cfg.Output.Precision, number.MaxPrecision))
	}

	switch cfg.Output.DecimalSeparator {
	case "", ".", ",":
	default:
		errs = append(errs, fmt.Sprintf("invalid output.decimal_separator: %q (must be \".\" or \",\")", cfg.Output.DecimalSeparator))
	}

	switch strings.ToLower(cfg.Output.ImaginaryUnit) {
	case "i", "j":
	default:
		errs = append(errs, fmt.Sprintf("invalid output.imaginary_unit: %q (must be i or j)", cfg.Output.ImaginaryUnit))
	}

	if cfg.Journal.MaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("invalid journal.max_entries: %d (must be positive)", cfg.Journal.MaxEntries))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Settings converts the engine and output sections into engine settings.
// The config must have passed Validate.
func (c *Config) Settings() maxcalc.Settings {
	s := maxcalc.DefaultSettings()

	if mode, err := evaluator.ParseAngleMode(c.Engine.Angle); err == nil {
		s.AngleMode = mode
	}
	s.Complex = c.Engine.Complex

	s.Format.Precision = c.Output.Precision
	if c.Output.DecimalSeparator != "" {
		s.Format.DecimalSeparator = rune(c.Output.DecimalSeparator[0])
	} else {
		s.Format.DecimalSeparator = number.DecimalSeparatorFor(c.Output.Locale)
	}
	if strings.ToLower(c.Output.ImaginaryUnit) == "j" {
		s.Format.ImaginaryUnit = 'j'
	}

	return s
}
