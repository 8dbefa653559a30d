package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is resolved once at startup and handed to the constructors that need it.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Business BusinessConfig `mapstructure:"business"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool             `mapstructure:"enabled"`
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	Receipts string `mapstructure:"receipts"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type BusinessConfig struct {
	DefaultBalance     int64         `mapstructure:"default_balance"`
	DefaultTier        string        `mapstructure:"default_tier"`
	TransferRateWindow time.Duration `mapstructure:"transfer_rate_window"`
	NotifyWorkers      int           `mapstructure:"notify_workers"`
	NotifyQueueSize    int           `mapstructure:"notify_queue_size"`
	ReversalLockTTL    time.Duration `mapstructure:"reversal_lock_ttl"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("mysql.max_open_conns", 50)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("kafka.topic.receipts", "wallet.receipts")
	v.SetDefault("auth.issuer", "wallet")
	v.SetDefault("business.default_tier", "level 1")
	v.SetDefault("business.transfer_rate_window", time.Second)
	v.SetDefault("business.notify_workers", 4)
	v.SetDefault("business.notify_queue_size", 1024)
	v.SetDefault("business.reversal_lock_ttl", 30*time.Second)
	v.SetDefault("log.level", "info")
}

// LoadConfig reads the yaml file at configPath. Every key can be overridden by an
// environment variable such as WALLET_MYSQL_PASSWORD.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("wallet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Business.DefaultBalance < 0 {
		return fmt.Errorf("business.default_balance must not be negative")
	}
	if c.Business.NotifyWorkers <= 0 {
		return fmt.Errorf("business.notify_workers must be positive")
	}
	if c.Business.NotifyQueueSize <= 0 {
		return fmt.Errorf("business.notify_queue_size must be positive")
	}
	if c.Business.TransferRateWindow <= 0 {
		return fmt.Errorf("business.transfer_rate_window must be positive")
	}
	if c.Business.ReversalLockTTL <= 0 {
		return fmt.Errorf("business.reversal_lock_ttl must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}
