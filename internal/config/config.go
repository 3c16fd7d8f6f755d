package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	HTTP     HTTPConfig     `yaml:"http"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	// Sign-in attempts allowed per email within the window before the
	// limiter pushes back.
	SignInAttempts      int  `yaml:"sign_in_attempts"`
	SignInWindowSeconds int  `yaml:"sign_in_window_seconds"`
	ResetTokenTTLHours  int  `yaml:"reset_token_ttl_hours"`
	RequireVerified     bool `yaml:"require_verified"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Auth.SignInAttempts == 0 {
		c.Auth.SignInAttempts = 5
	}
	if c.Auth.SignInWindowSeconds == 0 {
		c.Auth.SignInWindowSeconds = 300
	}
	if c.Auth.ResetTokenTTLHours == 0 {
		c.Auth.ResetTokenTTLHours = 24
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
}
