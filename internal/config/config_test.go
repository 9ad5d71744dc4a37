package config

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/go-cmp/cmp"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, envOf(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Addr:          ":3000",
		AllowOrigins:  "http://localhost:5173",
		AIWorkers:     2,
		AIQueueSize:   32,
		AIMoveTimeout: 10 * time.Second,
		DefaultDepth:  3,
		MatchInterval: time.Second,
		LogLevel:      "info",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	env := envOf(map[string]string{
		"CHESS_ADDR":       ":9000",
		"CHESS_AI_WORKERS": "8",
		"CHESS_DEPTH":      "2",
		"CHESS_LOG_LEVEL":  "debug",
	})
	cfg, err := Load([]string{"-addr", ":7000", "-ai-timeout", "250ms"}, env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("flag should beat env: addr = %q", cfg.Addr)
	}
	if cfg.AIWorkers != 8 || cfg.DefaultDepth != 2 {
		t.Errorf("env values not applied: %+v", cfg)
	}
	if cfg.AIMoveTimeout != 250*time.Millisecond {
		t.Errorf("timeout = %s, want 250ms", cfg.AIMoveTimeout)
	}
	if level, err := cfg.Level(); err != nil || level != log.LevelDebug {
		t.Errorf("Level() = %v, %v; want debug", level, err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"zero workers", []string{"-ai-workers", "0"}, nil},
		{"bad workers env", nil, map[string]string{"CHESS_AI_WORKERS": "many"}},
		{"depth too high", []string{"-depth", "7"}, nil},
		{"bad timeout", []string{"-ai-timeout", "soon"}, nil},
		{"negative interval", []string{"-match-interval", "-1s"}, nil},
		{"bad level", []string{"-log-level", "loud"}, nil},
		{"unknown flag", []string{"-verbose"}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, envOf(tt.env))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
