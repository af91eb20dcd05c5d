package logger

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Log outputs
const (
	OutputConsole = "console"
	OutputStderr  = "stderr"
	OutputFile    = "file"
	OutputBoth    = "both"
)

// Config defines the logger configuration
type Config struct {
	Level            string     `mapstructure:"level"`  // debug, info, warn, error
	Format           string     `mapstructure:"format"` // json, console
	Output           string     `mapstructure:"output"` // console, stderr, file, both
	File             FileConfig `mapstructure:"file"`
	EnableCaller     bool       `mapstructure:"enablecaller"`     // enable caller info
	EnableStacktrace bool       `mapstructure:"enablestacktrace"` // enable stacktrace for error level
}

// FileConfig defines file output configuration
type FileConfig struct {
	Filename   string `mapstructure:"filename"`   // log file path
	MaxSize    int    `mapstructure:"maxsize"`    // max size in MB
	MaxAge     int    `mapstructure:"maxage"`     // max age in days
	MaxBackups int    `mapstructure:"maxbackups"` // max backup files
	Compress   bool   `mapstructure:"compress"`   // compress rotated files
}

// DefaultConfig returns the default logger configuration. Interactive
// sessions write warnings to stderr so they do not interleave with chat output.
func DefaultConfig() *Config {
	return &Config{
		Level:            "warn",
		Format:           FormatConsole,
		Output:           OutputStderr,
		EnableCaller:     true,
		EnableStacktrace: false,
		File: FileConfig{
			Filename:   "logs/seekchat.log",
			MaxSize:    20,
			MaxAge:     14,
			MaxBackups: 5,
			Compress:   true,
		},
	}
}

var validLevels = []interface{}{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// Validate validates the logger configuration
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.Required, validation.By(func(value interface{}) error {
			return validation.Validate(strings.ToLower(value.(string)), validation.In(validLevels...))
		})),
		validation.Field(&c.Format, validation.Required, validation.In(FormatJSON, FormatConsole)),
		validation.Field(&c.Output, validation.Required, validation.In(OutputConsole, OutputStderr, OutputFile, OutputBoth)),
	); err != nil {
		return err
	}

	if c.Output == OutputFile || c.Output == OutputBoth {
		return validation.ValidateStruct(&c.File,
			validation.Field(&c.File.Filename, validation.Required),
			validation.Field(&c.File.MaxSize, validation.Required, validation.Min(1)),
			validation.Field(&c.File.MaxAge, validation.Required, validation.Min(1)),
			validation.Field(&c.File.MaxBackups, validation.Min(0)),
		)
	}
	return nil
}
