package config

import (
	"fmt"
	"os"
	"time"
)

// Mode selects the scanning strategy.
type Mode string

const (
	// ModeLine matches every pattern against each line on its own.
	ModeLine Mode = "line"
	// ModeChar walks the whole input once with the combined pattern.
	ModeChar Mode = "char"
)

// When selects whether output is colored at all.
type When string

const (
	WhenAlways When = "always"
	WhenAuto   When = "auto"
	WhenNever  When = "never"
)

// Config holds all configuration for color
type Config struct {
	Mode     Mode
	File     string
	Colors   []string // "<foreground>[/<background>]", in declaration order
	Patterns []string
	Command  []string // run under a PTY and highlight its output

	When    When
	NoColor bool // NO_COLOR is set

	// Timeout bounds one match attempt; zero means no limit.
	Timeout time.Duration

	// Report selects a span report instead of colored text ("" or "yaml").
	Report string

	Debug     bool
	LogFormat string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Mode:      ModeLine,
		When:      WhenAlways,
		LogFormat: "text",
	}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLine, ModeChar:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%s is not a valid mode", s)
	}
}

// ParseWhen validates a color policy name.
func ParseWhen(s string) (When, error) {
	switch When(s) {
	case WhenAlways, WhenAuto, WhenNever:
		return When(s), nil
	default:
		return "", fmt.Errorf("%s is not a valid color policy (use always, auto or never)", s)
	}
}

// LoadFromEnv overrides cfg with environment variables
func LoadFromEnv(cfg *Config) error {
	if mode := os.Getenv("COLOR_MODE"); mode != "" {
		m, err := ParseMode(mode)
		if err != nil {
			return fmt.Errorf("invalid COLOR_MODE: %w", err)
		}
		cfg.Mode = m
	}

	if timeout := os.Getenv("COLOR_MATCH_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid COLOR_MATCH_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	if debug := os.Getenv("COLOR_DEBUG"); debug != "" {
		switch debug {
		case "true", "1", "yes":
			cfg.Debug = true
		case "false", "0", "no":
			cfg.Debug = false
		default:
			return fmt.Errorf("invalid COLOR_DEBUG value: %q (use true/false)", debug)
		}
	}

	if format := os.Getenv("COLOR_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}

	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}

	return nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return err
	}

	if _, err := ParseWhen(string(cfg.When)); err != nil {
		return err
	}

	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	switch cfg.Report {
	case "", "yaml":
	default:
		return fmt.Errorf("%s is not a valid report format (use yaml)", cfg.Report)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s is not a valid log format (use text or json)", cfg.LogFormat)
	}

	if len(cfg.Patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}

	return nil
}

// Colorize reports whether output should carry color sequences.
// isTerminal is consulted only for WhenAuto.
func (c *Config) Colorize(isTerminal bool) bool {
	switch c.When {
	case WhenNever:
		return false
	case WhenAuto:
		return isTerminal && !c.NoColor
	default:
		return true
	}
}
