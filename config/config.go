// Package config loads service settings from an optional file, HOTELAGENT_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "HOTELAGENT"

type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	Booking BookingConfig `mapstructure:"booking"`
	// Offline forces the local capabilities even when an API key is set.
	Offline bool `mapstructure:"offline"`
}

type LLMConfig struct {
	APIKey                string        `mapstructure:"api_key"`
	BaseURL               string        `mapstructure:"base_url"`
	Model                 string        `mapstructure:"model"`
	Temperature           float32       `mapstructure:"temperature"`
	CorrectionTemperature float32       `mapstructure:"correction_temperature"`
	Timeout               time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	Metrics bool   `mapstructure:"metrics"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BookingConfig struct {
	HotelName      string   `mapstructure:"hotel_name"`
	Language       string   `mapstructure:"language"`
	PaymentMethods []string `mapstructure:"payment_methods"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0)
	v.SetDefault("llm.correction_temperature", 0.7)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.metrics", true)
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "hotelagent:")
	v.SetDefault("store.redis.ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("booking.hotel_name", "GrandVista Hotel")
	v.SetDefault("booking.language", "English")
	v.SetDefault("booking.payment_methods", []string{"credit card", "debit card", "cash", "paypal"})
	v.SetDefault("offline", false)
}

// Load reads path when given; otherwise hotelagent.{yaml,json,...} is looked
// up in the working directory and ./config, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("hotelagent")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if len(c.Booking.PaymentMethods) == 0 {
		return errors.New("booking.payment_methods must not be empty")
	}
	return nil
}

// UseLocal reports whether the model-free capabilities should serve turns.
func (c *Config) UseLocal() bool {
	return c.Offline || c.LLM.APIKey == ""
}
