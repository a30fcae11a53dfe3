package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.InitialClock != 600*time.Second || cfg.InitialClockSeconds() != 600 {
		t.Fatalf("InitialClock = %v (%d s)", cfg.InitialClock, cfg.InitialClockSeconds())
	}
	if cfg.TickInterval != time.Second {
		t.Fatalf("TickInterval = %v", cfg.TickInterval)
	}
	if cfg.ComputerDelay != 500*time.Millisecond {
		t.Fatalf("ComputerDelay = %v", cfg.ComputerDelay)
	}
	if cfg.DefaultMode != "computer" || cfg.ComputerSide != "black" {
		t.Fatalf("mode/side = %q/%q", cfg.DefaultMode, cfg.ComputerSide)
	}
	if cfg.MaxSessions != 500 {
		t.Fatalf("MaxSessions = %d", cfg.MaxSessions)
	}
	if cfg.RedisURL != "" || cfg.ChatRelayURL != "" {
		t.Fatalf("unexpected urls: redis=%q relay=%q", cfg.RedisURL, cfg.ChatRelayURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CHESS_INITIAL_CLOCK", "5m")
	t.Setenv("CHESS_DEFAULT_MODE", " Human ")
	t.Setenv("CHESS_COMPUTER_SIDE", "WHITE")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MAX_SESSIONS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.InitialClockSeconds() != 300 {
		t.Fatalf("InitialClockSeconds = %d", cfg.InitialClockSeconds())
	}
	if cfg.DefaultMode != "human" || cfg.ComputerSide != "white" {
		t.Fatalf("mode/side = %q/%q", cfg.DefaultMode, cfg.ComputerSide)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.MaxSessions != 3 {
		t.Fatalf("MaxSessions = %d", cfg.MaxSessions)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown mode", key: "CHESS_DEFAULT_MODE", val: "robot"},
		{name: "unknown side", key: "CHESS_COMPUTER_SIDE", val: "green"},
		{name: "tiny clock", key: "CHESS_INITIAL_CLOCK", val: "10ms"},
		{name: "zero sessions", key: "MAX_SESSIONS", val: "0"},
		{name: "bad duration", key: "SESSION_IDLE_TTL", val: "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("Load accepted %s=%q", tt.key, tt.val)
			}
		})
	}
}
