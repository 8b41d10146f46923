package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds service and scraper configuration.
type Config struct {
	Host              string
	Port              int
	Timeout           time.Duration
	SourceDelay       time.Duration
	UserAgent         string
	MaxItemsPerSource int
	MinScraped        int
	FallbackPad       int
	MaxProducts       int
	TitleMaxLen       int
	DedupeMaxSize     int
	RespectRobotsTxt  bool
	MetricsEnabled    bool
	Verbose           bool
}

// DefaultConfig returns the defaults the service has always shipped with.
func DefaultConfig() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              5000,
		Timeout:           10 * time.Second,
		SourceDelay:       2 * time.Second,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		MaxItemsPerSource: 5,
		MinScraped:        10,
		FallbackPad:       15,
		MaxProducts:       20,
		TitleMaxLen:       50,
		DedupeMaxSize:     1024,
		RespectRobotsTxt:  false,
		MetricsEnabled:    true,
		Verbose:           false,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.SourceDelay < 0 {
		return fmt.Errorf("source delay cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.MaxItemsPerSource <= 0 {
		return fmt.Errorf("max items per source must be positive")
	}
	if c.MaxProducts <= 0 {
		return fmt.Errorf("max products must be positive")
	}
	if c.MinScraped < 0 {
		return fmt.Errorf("min scraped cannot be negative")
	}
	if c.MinScraped > c.MaxProducts {
		return fmt.Errorf("min scraped (%d) cannot exceed max products (%d)", c.MinScraped, c.MaxProducts)
	}
	if c.FallbackPad <= 0 {
		return fmt.Errorf("fallback pad must be positive")
	}
	if c.FallbackPad > c.MaxProducts {
		return fmt.Errorf("fallback pad (%d) cannot exceed max products (%d)", c.FallbackPad, c.MaxProducts)
	}
	if c.TitleMaxLen <= 0 {
		return fmt.Errorf("title max length must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	return nil
}

// EnvString returns the trimmed value of key and whether it was set to something non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer. Unset or empty variables report ok=false.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvBool parses key as a boolean. Unset or empty variables report ok=false.
func EnvBool(key string) (bool, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}
