package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rl1809/inventory-bot/internal/adapter/storage"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected default http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":50051" {
		t.Fatalf("expected default grpc addr, got %q", cfg.GRPCAddr)
	}
	if cfg.Backend != storage.BackendFile || cfg.FilePath != "inventory.json" {
		t.Fatalf("expected file backend on inventory.json, got %q %q", cfg.Backend, cfg.FilePath)
	}
	if cfg.Dedupe {
		t.Fatal("expected dedupe off by default")
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("INVENTORY_BACKEND", "sqlite")
	t.Setenv("INVENTORY_BOT_PASSWORD", "from-env")
	t.Setenv("INVENTORY_S3_BUCKET", "stock")
	t.Setenv("INVENTORY_DEDUPE", "true")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-password", "from-flag", "-http-addr", ":9090"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Password != "from-flag" {
		t.Fatalf("expected flag to win, got %q", cfg.Password)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected http addr :9090, got %q", cfg.HTTPAddr)
	}
	if !cfg.Dedupe {
		t.Fatal("expected dedupe from env")
	}

	opts := cfg.Storage()
	if opts.Backend != storage.BackendSQLite || opts.S3.Bucket != "stock" || opts.S3.Key != "inventory.json" {
		t.Fatalf("unexpected storage options: %+v", opts)
	}
}

func TestParseConfigTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.txt")
	if err := os.WriteFile(path, []byte("123:abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INVENTORY_BOT_TOKEN_FILE", path)

	cfg, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.BotToken != "123:abc" {
		t.Fatalf("expected token from file, got %q", cfg.BotToken)
	}
}

func TestParseConfigTokenEnvWinsOverFile(t *testing.T) {
	t.Setenv("INVENTORY_BOT_TOKEN", "direct")
	t.Setenv("INVENTORY_BOT_TOKEN_FILE", filepath.Join(t.TempDir(), "missing.txt"))

	cfg, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.BotToken != "direct" {
		t.Fatalf("expected direct token, got %q", cfg.BotToken)
	}
}

func TestParseConfigErrors(t *testing.T) {
	t.Run("bad env", func(t *testing.T) {
		t.Setenv("INVENTORY_DEDUPE", "maybe")
		_, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
		if err == nil || !strings.Contains(err.Error(), "parse env:") {
			t.Fatalf("expected parse env error, got %v", err)
		}
	})

	t.Run("empty token file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.txt")
		if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("INVENTORY_BOT_TOKEN_FILE", path)
		if _, err := ParseConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil); err == nil {
			t.Fatal("expected error for empty token file")
		}
	})

	t.Run("webhook without token", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		if _, err := ParseConfig(fs, []string{"-webhook-url", "https://example.com/telegram/webhook"}); err == nil {
			t.Fatal("expected error for webhook url without token")
		}
	})
}
