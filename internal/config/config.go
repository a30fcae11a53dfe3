package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	RedisURL string `env:"REDIS_URL"`

	OpeningCatalogPath string `env:"CHESS_OPENING_CATALOG_PATH"`
	MessagesDir        string `env:"MESSAGES_DIR"`

	InitialClock   time.Duration `env:"CHESS_INITIAL_CLOCK" envDefault:"600s"`
	TickInterval   time.Duration `env:"CHESS_TICK_INTERVAL" envDefault:"1s"`
	ComputerDelay  time.Duration `env:"CHESS_COMPUTER_DELAY" envDefault:"500ms"`
	DefaultMode    string        `env:"CHESS_DEFAULT_MODE" envDefault:"computer"`
	ComputerSide   string        `env:"CHESS_COMPUTER_SIDE" envDefault:"black"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	MaxSessions    int           `env:"MAX_SESSIONS" envDefault:"500"`

	ChatRelayURL     string        `env:"CHAT_RELAY_URL"`
	ChatRelayTimeout time.Duration `env:"CHAT_RELAY_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment and validates the result.
func Load() (*AppConfig, error) {
	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) normalize() {
	c.HTTPAddr = strings.TrimSpace(c.HTTPAddr)
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.OpeningCatalogPath = strings.TrimSpace(c.OpeningCatalogPath)
	c.MessagesDir = strings.TrimSpace(c.MessagesDir)
	c.DefaultMode = strings.ToLower(strings.TrimSpace(c.DefaultMode))
	c.ComputerSide = strings.ToLower(strings.TrimSpace(c.ComputerSide))
	c.ChatRelayURL = strings.TrimSpace(c.ChatRelayURL)
}

func (c *AppConfig) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.InitialClock < time.Second {
		return fmt.Errorf("CHESS_INITIAL_CLOCK must be at least 1s, got %s", c.InitialClock)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("CHESS_TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.ComputerDelay < 0 {
		return fmt.Errorf("CHESS_COMPUTER_DELAY must not be negative, got %s", c.ComputerDelay)
	}
	switch c.DefaultMode {
	case "human", "computer":
	default:
		return fmt.Errorf("CHESS_DEFAULT_MODE must be human or computer, got %q", c.DefaultMode)
	}
	switch c.ComputerSide {
	case "white", "black":
	default:
		return fmt.Errorf("CHESS_COMPUTER_SIDE must be white or black, got %q", c.ComputerSide)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive, got %d", c.MaxSessions)
	}
	if c.ChatRelayURL != "" && c.ChatRelayTimeout <= 0 {
		return fmt.Errorf("CHAT_RELAY_TIMEOUT must be positive, got %s", c.ChatRelayTimeout)
	}
	return nil
}

// InitialClockSeconds is the per-side starting time in whole seconds.
func (c *AppConfig) InitialClockSeconds() int {
	return int(c.InitialClock / time.Second)
}
