package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	SQLite      SQLiteConfig
	Redis       RedisConfig
	Oracle      OracleConfig
	Translation TranslationConfig
	Analysis    AnalysisConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// OracleConfig configures the text-analysis oracle (an OpenAI-compatible chat API).
type OracleConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

// TranslationConfig configures the translation oracle. An empty APIKey leaves
// the gateway unconfigured; translation then degrades to a no-op and analysis
// proceeds in the original language.
type TranslationConfig struct {
	APIKey      string
	Model       string
	TimeoutSec  int
	CacheTTLMin int
}

type AnalysisConfig struct {
	MaxBatchSize    int
	RetryAttempts   int
	RetryBaseMillis int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/feedbacklens")

	viper.SetEnvPrefix("FEEDBACKLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/feedbacklens.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("oracle.model", "gpt-4o-mini")
	viper.SetDefault("oracle.temperature", 0.2)
	viper.SetDefault("oracle.maxTokens", 1024)
	viper.SetDefault("oracle.timeoutSec", 60)

	viper.SetDefault("translation.model", "gpt-4o-mini")
	viper.SetDefault("translation.timeoutSec", 30)
	viper.SetDefault("translation.cacheTTLMin", 1440)

	viper.SetDefault("analysis.maxBatchSize", 50)
	viper.SetDefault("analysis.retryAttempts", 3)
	viper.SetDefault("analysis.retryBaseMillis", 500)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
