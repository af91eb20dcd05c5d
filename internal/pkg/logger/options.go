package logger

// Option overrides one field of a base configuration
type Option func(*Config)

// WithLevel sets the log level
func WithLevel(level string) Option {
	return func(c *Config) {
		c.Level = level
	}
}

// WithOutput sets the log output (console, stderr, file, or both)
func WithOutput(output string) Option {
	return func(c *Config) {
		c.Output = output
	}
}

// WithFile sends logs to a rotated file, keeping stderr when it was
// already a sink
func WithFile(filename string) Option {
	return func(c *Config) {
		c.File.Filename = filename
		switch c.Output {
		case OutputStderr, OutputConsole:
			c.Output = OutputBoth
		case OutputBoth:
		default:
			c.Output = OutputFile
		}
	}
}

// Debugging logs everything with caller and stacktraces
func Debugging() Option {
	return func(c *Config) {
		c.Level = "debug"
		c.EnableCaller = true
		c.EnableStacktrace = true
	}
}

// Apply returns a copy of base with opts applied, base is left untouched
func Apply(base *Config, opts ...Option) *Config {
	if base == nil {
		base = DefaultConfig()
	}
	cfg := *base
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// NewWithOptions creates a logger from base overridden by opts
func NewWithOptions(base *Config, opts ...Option) (*Logger, error) {
	return New(Apply(base, opts...))
}
