package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	AppStore  AppStoreConfig  `yaml:"appstore" mapstructure:"appstore"`
	Reducer   ReducerConfig   `yaml:"reducer" mapstructure:"reducer"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AppStoreConfig configures the public review feed and lookup endpoints
// and the pagination policy of the fetch loop.
type AppStoreConfig struct {
	Country              string `yaml:"country" mapstructure:"country"`
	FeedBaseURL          string `yaml:"feed_base_url" mapstructure:"feed_base_url"`
	LookupBaseURL        string `yaml:"lookup_base_url" mapstructure:"lookup_base_url"`
	PageCeiling          int    `yaml:"page_ceiling" mapstructure:"page_ceiling"`
	PageDelayMS          int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	SufficiencyThreshold int    `yaml:"sufficiency_threshold" mapstructure:"sufficiency_threshold"`
}

// PageDelay returns the inter-page delay as a duration.
func (c AppStoreConfig) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// ReducerConfig configures the token budget applied to the review corpus.
// Token counts are estimates at roughly four characters per token.
type ReducerConfig struct {
	MaxReviewTokens int `yaml:"max_review_tokens" mapstructure:"max_review_tokens"`
	MaxTotalTokens  int `yaml:"max_total_tokens" mapstructure:"max_total_tokens"`
	MaxReviews      int `yaml:"max_reviews" mapstructure:"max_reviews"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("APPGAPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("appstore.country", "us")
	v.SetDefault("appstore.feed_base_url", "https://itunes.apple.com")
	v.SetDefault("appstore.lookup_base_url", "https://itunes.apple.com/lookup")
	v.SetDefault("appstore.page_ceiling", 10)
	v.SetDefault("appstore.page_delay_ms", 100)
	v.SetDefault("appstore.sufficiency_threshold", 500)
	v.SetDefault("reducer.max_review_tokens", 1000)
	v.SetDefault("reducer.max_total_tokens", 6000)
	v.SetDefault("reducer.max_reviews", 100)
	// The empty default registers the key so AutomaticEnv can fill it.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.temperature", 0.7)
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
