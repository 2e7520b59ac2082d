package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     int
	LogLevel string

	MessageSource        string // mongo, postgres or file
	MongoURI             string
	MongoDatabase        string
	MongoCollection      string
	DatabaseURL          string
	ExportPath           string
	RelevantMessageTypes []int

	CacheBackend  string // dir, redis, postgres or sqlite
	CacheDir      string
	SQLitePath    string
	RedisURL      string
	CacheTimezone string

	NatsURL   string
	NatsToken string

	SlackBotToken string
	SlackChannel  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                 envInt("TALKSPACE_PORT", 8080),
		LogLevel:             envStr("LOG_LEVEL", "info"),
		MessageSource:        envStr("MESSAGE_SOURCE", "mongo"),
		MongoURI:             envStr("MONGO_CONNECTION_STRING", ""),
		MongoDatabase:        envStr("MONGO_DATABASE", "talkspace"),
		MongoCollection:      envStr("MONGO_COLLECTION", "messages"),
		DatabaseURL:          envStr("DATABASE_URL", ""),
		ExportPath:           expandHome(envStr("MESSAGE_EXPORT_PATH", "")),
		RelevantMessageTypes: envInts("RELEVANT_MESSAGE_TYPES", []int{1}),
		CacheBackend:         envStr("CACHE_BACKEND", "dir"),
		CacheDir:             expandHome(envStr("CACHE_DIR", "~/.talkspace/cache")),
		SQLitePath:           expandHome(envStr("CACHE_SQLITE_PATH", "~/.talkspace/cache.db")),
		RedisURL:             envStr("REDIS_URL", ""),
		CacheTimezone:        envStr("CACHE_TIMEZONE", "UTC"),
		NatsURL:              envStr("NATS_URL", ""),
		NatsToken:            envStr("NATS_TOKEN", ""),
		SlackBotToken:        envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:         envStr("SLACK_CHANNEL", ""),
	}
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	var errs []error

	switch c.MessageSource {
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_CONNECTION_STRING is required for the mongo message source"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres message source"))
		}
	case "file":
		if c.ExportPath == "" {
			errs = append(errs, errors.New("MESSAGE_EXPORT_PATH is required for the file message source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MESSAGE_SOURCE %q", c.MessageSource))
	}

	switch c.CacheBackend {
	case "dir":
		if c.CacheDir == "" {
			errs = append(errs, errors.New("CACHE_DIR is required for the dir cache"))
		}
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis cache"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres cache"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("CACHE_SQLITE_PATH is required for the sqlite cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend))
	}

	if len(c.RelevantMessageTypes) == 0 {
		errs = append(errs, errors.New("RELEVANT_MESSAGE_TYPES must list at least one type"))
	}

	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envInts parses a comma-separated list of integers. Any bad entry makes the
// whole value fall back.
func envInts(key string, fallback []int) []int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return fallback
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
