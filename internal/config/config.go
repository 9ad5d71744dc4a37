// Package config reads server settings from command-line flags, falling
// back to CHESS_* environment variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// ErrInvalidConfig indicates an unusable setting.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Addr          string
	AllowOrigins  string
	AIWorkers     int
	AIQueueSize   int
	AIMoveTimeout time.Duration
	DefaultDepth  int
	MatchInterval time.Duration
	LogLevel      string
}

// Load parses args (without the program name). getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	var cfg Config
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", env("CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "origins", env("CHESS_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.StringVar(&cfg.LogLevel, "log-level", env("CHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")

	workers := fs.String("ai-workers", env("CHESS_AI_WORKERS", "2"), "number of concurrent engine searches")
	queue := fs.String("ai-queue", env("CHESS_AI_QUEUE", "32"), "engine jobs that may wait for a worker")
	timeout := fs.String("ai-timeout", env("CHESS_AI_TIMEOUT", "10s"), "time limit for one engine move")
	depth := fs.String("depth", env("CHESS_DEPTH", "3"), "default search depth (1-4)")
	interval := fs.String("match-interval", env("CHESS_MATCH_INTERVAL", "1s"), "how often waiting players are paired")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var err error
	if cfg.AIWorkers, err = positiveInt("ai-workers", *workers); err != nil {
		return Config{}, err
	}
	if cfg.AIQueueSize, err = positiveInt("ai-queue", *queue); err != nil {
		return Config{}, err
	}
	if cfg.DefaultDepth, err = positiveInt("depth", *depth); err != nil {
		return Config{}, err
	}
	if cfg.DefaultDepth > 4 {
		return Config{}, fmt.Errorf("%w: depth %d is above 4", ErrInvalidConfig, cfg.DefaultDepth)
	}
	if cfg.AIMoveTimeout, err = positiveDuration("ai-timeout", *timeout); err != nil {
		return Config{}, err
	}
	if cfg.MatchInterval, err = positiveDuration("match-interval", *interval); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level maps LogLevel to a fiber log level.
func (c Config) Level() (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return log.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
}

func positiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidConfig, name, s)
	}
	return n, nil
}

func positiveDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive duration, got %q", ErrInvalidConfig, name, s)
	}
	return d, nil
}
