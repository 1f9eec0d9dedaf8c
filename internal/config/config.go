// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP Server
	Port        string
	CORSOrigins []string

	// Database
	DBPath string

	LogLevel string

	// Tokens
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	// Redis stats cache; disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StatsCacheTTL time.Duration

	// AMQP ledger events; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
}

var defaults = map[string]any{
	"port":            "8080",
	"cors_origins":    "*",
	"db_path":         "./data/splitledger.db",
	"log_level":       "info",
	"jwt_secret":      "",
	"jwt_issuer":      "splitledger",
	"jwt_audience":    "",
	"token_ttl":       "24h",
	"redis_addr":      "",
	"redis_password":  "",
	"redis_db":        0,
	"stats_cache_ttl": "5m",
	"amqp_url":        "",
	"amqp_exchange":   "splitledger.events",
}

// Load reads envFile if it exists, then the process environment. Environment
// variables win over the file. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{
		Port:        v.GetString("port"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		DBPath:      v.GetString("db_path"),
		LogLevel:    strings.ToLower(v.GetString("log_level")),

		JWTSecret:   v.GetString("jwt_secret"),
		JWTIssuer:   v.GetString("jwt_issuer"),
		JWTAudience: v.GetString("jwt_audience"),
		TokenTTL:    v.GetDuration("token_ttl"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		StatsCacheTTL: v.GetDuration("stats_cache_ttl"),

		AMQPURL:      v.GetString("amqp_url"),
		AMQPExchange: v.GetString("amqp_exchange"),
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT secret must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}

	if c.RedisAddr != "" {
		if c.RedisDB < 0 {
			problems = append(problems, fmt.Sprintf("invalid redis db %d: must not be negative", c.RedisDB))
		}
		if c.StatsCacheTTL <= 0 {
			problems = append(problems, fmt.Sprintf("invalid stats cache TTL %v: must be positive", c.StatsCacheTTL))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
