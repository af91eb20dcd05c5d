package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "chat.log")

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "default config", config: DefaultConfig()},
		{name: "nil config", config: nil},
		{
			name:   "stderr console",
			config: &Config{Level: "info", Format: FormatConsole, Output: OutputStderr},
		},
		{
			name: "file output",
			config: &Config{
				Level:  "debug",
				Format: FormatJSON,
				Output: OutputFile,
				File:   FileConfig{Filename: logFile, MaxSize: 10, MaxAge: 7, MaxBackups: 3},
			},
		},
		{
			name:    "invalid level",
			config:  &Config{Level: "loud", Format: FormatJSON, Output: OutputConsole},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  &Config{Level: "info", Format: "xml", Output: OutputConsole},
			wantErr: true,
		},
		{
			name:    "invalid output",
			config:  &Config{Level: "info", Format: FormatJSON, Output: "syslog"},
			wantErr: true,
		},
		{
			name:    "file output without filename",
			config:  &Config{Level: "info", Format: FormatJSON, Output: OutputFile},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Info("hello")
			_ = logger.Sync()
		})
	}
}

func TestWithFileWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "seekchat.log")

	base := DefaultConfig()
	base.Format = FormatJSON
	base.Output = OutputFile
	logger, err := NewWithOptions(base, WithLevel("info"), WithFile(path))
	require.NoError(t, err)
	logger.Info("provider call", zap.String("model", "gemini-2.5-flash"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"model":"gemini-2.5-flash"`)
}

func TestApplyOptions(t *testing.T) {
	base := DefaultConfig()

	cfg := Apply(base, Debugging(), WithFile("/tmp/seekchat.log"))
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.EnableStacktrace)
	assert.Equal(t, OutputBoth, cfg.Output)
	assert.Equal(t, "/tmp/seekchat.log", cfg.File.Filename)

	assert.Equal(t, "warn", base.Level)
	assert.Equal(t, OutputStderr, base.Output)

	cfg = Apply(nil, WithOutput(OutputConsole))
	assert.Equal(t, OutputConsole, cfg.Output)
}

func TestUpperCaseLevelAccepted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "INFO"
	assert.NoError(t, cfg.Validate())
}

func TestNamedAndWith(t *testing.T) {
	logger := NewNop()

	assert.NotNil(t, logger.Named("fallback"))
	assert.NotNil(t, logger.With(zap.String("provider", "google")))
	assert.Equal(t, logger.Config(), logger.Named("x").Config())
}

func TestContext(t *testing.T) {
	base := NewNop()

	ctx := context.Background()
	assert.Same(t, base, base.WithContext(ctx))

	ctx = WithSessionID(ctx, "s-1")
	ctx = WithMessageID(ctx, "m-1")
	assert.Equal(t, "s-1", GetSessionID(ctx))
	assert.Equal(t, "m-1", GetMessageID(ctx))
	assert.NotSame(t, base, base.WithContext(ctx))

	ctx = ToContext(ctx, base)
	assert.NotNil(t, FromContext(ctx))
	assert.Equal(t, "", GetSessionID(context.Background()))
}

func TestGlobalLogger(t *testing.T) {
	SetGlobal(NewNop())
	assert.NotNil(t, L())

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	_ = Sync()
}
