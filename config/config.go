package config

// Config represents the complete MaxCalc configuration
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing config file, for resolving relative paths
	Path    string        `yaml:"-"` // Resolved config file path, empty when running on defaults
	Engine  EngineConfig  `yaml:"engine"`
	Output  OutputConfig  `yaml:"output"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
	REPL    REPLConfig    `yaml:"repl"`
}

// EngineConfig holds evaluation settings
type EngineConfig struct {
	Angle   string `yaml:"angle" env:"MAXCALC_ANGLE"`     // rad, deg or grad
	Complex bool   `yaml:"complex" env:"MAXCALC_COMPLEX"` // Allow complex results
}

// OutputConfig holds result formatting settings
type OutputConfig struct {
	Precision        int    `yaml:"precision" env:"MAXCALC_PRECISION"` // Significant digits, 1-17
	DecimalSeparator string `yaml:"decimal_separator"`                 // "", "." or ","; empty derives from locale
	ImaginaryUnit    string `yaml:"imaginary_unit"`                    // i or j
	Locale           string `yaml:"locale" env:"MAXCALC_LOCALE"`       // BCP 47 tag, e.g. "en" or "ru"
}

// JournalConfig holds evaluation journal settings
type JournalConfig struct {
	Path       string `yaml:"path" env:"MAXCALC_JOURNAL"` // SQLite file; empty disables the journal
	MaxEntries int    `yaml:"max_entries"`                // Entries kept before the oldest are trimmed
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"MAXCALC_LOG_LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"MAXCALC_LOG_FORMAT"` // text or json
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	HistoryFile string `yaml:"history_file"` // Empty means <tmp>/.maxcalc_history
	Color       bool   `yaml:"color"`
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Angle:   "rad",
			Complex: true,
		},
		Output: OutputConfig{
			Precision:     15,
			ImaginaryUnit: "i",
			Locale:        "en",
		},
		Journal: JournalConfig{
			MaxEntries: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		REPL: REPLConfig{
			Color: true,
		},
	}
}
