package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/lk2023060901/seekcompass-assistant/internal/ai/provider/registry"
	"github.com/lk2023060901/seekcompass-assistant/internal/pkg/logger"
)

// EnvPrefix 环境变量前缀，例如 SEEKCHAT_LOG_LEVEL
const EnvPrefix = "SEEKCHAT"

type Config struct {
	Log       logger.Config             `mapstructure:"log"`
	Storage   StorageConfig             `mapstructure:"storage"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Diagram   DiagramConfig             `mapstructure:"diagram"`
	Catalog   CatalogConfig             `mapstructure:"catalog"`
	Chat      ChatConfig                `mapstructure:"chat"`
	Export    ExportConfig              `mapstructure:"export"`
}

type StorageConfig struct {
	Dir string `mapstructure:"dir"` // 为空时使用用户配置目录
}

type ProviderConfig struct {
	BaseURL string            `mapstructure:"base_url"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`
}

type DiagramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	KrokiURL string        `mapstructure:"kroki_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CatalogConfig struct {
	File string `mapstructure:"file"` // 用户提交的工具 JSON 文件
}

type ChatConfig struct {
	Temperature float64 `mapstructure:"temperature"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	def := logger.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.format", def.Format)
	v.SetDefault("log.output", def.Output)
	v.SetDefault("log.enablecaller", def.EnableCaller)
	v.SetDefault("log.enablestacktrace", def.EnableStacktrace)
	v.SetDefault("log.file.filename", def.File.Filename)
	v.SetDefault("log.file.maxsize", def.File.MaxSize)
	v.SetDefault("log.file.maxage", def.File.MaxAge)
	v.SetDefault("log.file.maxbackups", def.File.MaxBackups)
	v.SetDefault("log.file.compress", def.File.Compress)

	v.SetDefault("storage.dir", "")
	v.SetDefault("diagram.enabled", false)
	v.SetDefault("diagram.kroki_url", "https://kroki.io")
	v.SetDefault("diagram.timeout", 10*time.Second)
	v.SetDefault("catalog.file", "")
	v.SetDefault("chat.temperature", 0.3)
	v.SetDefault("export.dir", ".")
}

// LoadConfig 读取配置文件，path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	for name := range c.Providers {
		if !registry.IsKnown(registry.ProviderID(name)) {
			return fmt.Errorf("providers: unknown provider %q", name)
		}
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.Chat),
		validation.Field(&c.Diagram),
	)
}

var urlPattern = regexp.MustCompile(`^https?://[^\s/]+`)

// Validate 校验采样温度
func (c ChatConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
	)
}

// Validate 启用流程图渲染时必须配置 Kroki 地址
func (c DiagramConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.KrokiURL, validation.When(c.Enabled, validation.Required, validation.Match(urlPattern))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Provider 返回指定 Provider 的连接配置，未配置时为零值
func (c *Config) Provider(id registry.ProviderID) ProviderConfig {
	return c.Providers[string(id)]
}

// StorageDir 返回持久化目录，未配置时使用 <用户配置目录>/seekcompass
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(base, "seekcompass"), nil
}
