// Package config loads server settings from INVENTORY_* environment
// variables, with command-line flags taking precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/rl1809/inventory-bot/internal/adapter/storage"
)

type Config struct {
	BotToken      string `env:"INVENTORY_BOT_TOKEN"`
	BotTokenFile  string `env:"INVENTORY_BOT_TOKEN_FILE"`
	Password      string `env:"INVENTORY_BOT_PASSWORD"`
	WebhookSecret string `env:"INVENTORY_BOT_WEBHOOK_SECRET"`
	WebhookURL    string `env:"INVENTORY_WEBHOOK_URL"`

	HTTPAddr string `env:"INVENTORY_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"INVENTORY_GRPC_ADDR" envDefault:":50051"`

	Backend     string `env:"INVENTORY_BACKEND"       envDefault:"file"`
	FilePath    string `env:"INVENTORY_FILE"          envDefault:"inventory.json"`
	SQLitePath  string `env:"INVENTORY_SQLITE_PATH"   envDefault:"inventory.db"`
	MySQLDSN    string `env:"INVENTORY_MYSQL_DSN"`
	PostgresDSN string `env:"INVENTORY_POSTGRES_DSN"`
	RedisAddr   string `env:"INVENTORY_REDIS_ADDR"    envDefault:"localhost:6379"`
	Dedupe      bool   `env:"INVENTORY_DEDUPE"`

	S3Bucket    string `env:"INVENTORY_S3_BUCKET"`
	S3Key       string `env:"INVENTORY_S3_KEY"        envDefault:"inventory.json"`
	S3Region    string `env:"INVENTORY_S3_REGION"     envDefault:"us-east-1"`
	S3Endpoint  string `env:"INVENTORY_S3_ENDPOINT"`
	S3PathStyle bool   `env:"INVENTORY_S3_PATH_STYLE"`

	LogLevel  string `env:"INVENTORY_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"INVENTORY_LOG_FORMAT" envDefault:"text"`
}

// ParseConfig reads the environment, then applies flag overrides from args.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.BotTokenFile, "token-file", cfg.BotTokenFile, "file holding the Telegram bot token")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "access password (empty disables the check)")
	fs.StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "public URL to register with Telegram")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address (empty disables gRPC)")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "inventory backend: file, sqlite, mysql, postgres, redis or s3")
	fs.StringVar(&cfg.FilePath, "file", cfg.FilePath, "inventory JSON file for the file backend")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "database path for the sqlite backend")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address for the redis backend and de-duplication")
	fs.BoolVar(&cfg.Dedupe, "dedupe", cfg.Dedupe, "drop redelivered updates using redis")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.BotToken == "" && cfg.BotTokenFile != "" {
		token, err := readToken(cfg.BotTokenFile)
		if err != nil {
			return Config{}, err
		}
		cfg.BotToken = token
	}
	if cfg.WebhookURL != "" && cfg.BotToken == "" {
		return Config{}, errors.New("webhook url requires a bot token")
	}
	return cfg, nil
}

// Storage returns the backend selection for storage.Open.
func (c Config) Storage() storage.Options {
	return storage.Options{
		Backend:     c.Backend,
		FilePath:    c.FilePath,
		SQLitePath:  c.SQLitePath,
		MySQLDSN:    c.MySQLDSN,
		PostgresDSN: c.PostgresDSN,
		RedisAddr:   c.RedisAddr,
		S3: storage.S3Config{
			Bucket:    c.S3Bucket,
			Key:       c.S3Key,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			PathStyle: c.S3PathStyle,
		},
	}
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read bot token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("bot token file %s is empty", path)
	}
	return token, nil
}
