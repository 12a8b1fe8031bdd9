package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL       string
	Backend       string // colly or resty
	Timeout       time.Duration
	UserAgent     string
	MaxPages      int
	RateLimit     float64 // requests per second, 0 disables
	RepeatWindow  int     // recent page fingerprints kept, 0 disables
	SkipMalformed bool
	OutputFile    string
	OutputFormat  string // json, csv, or dual
	AtomicWrite   bool
	MetricsAddr   string
	Verbose       bool
}

// DefaultConfig returns defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "http://books.toscrape.com",
		Backend:       "colly",
		Timeout:       10 * time.Second,
		UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		MaxPages:      1000,
		RateLimit:     0,
		RepeatWindow:  8,
		SkipMalformed: false,
		OutputFile:    "books_data.json",
		OutputFormat:  "json",
		AtomicWrite:   false,
		MetricsAddr:   "",
		Verbose:       false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https")
	}

	if c.Backend != "colly" && c.Backend != "resty" {
		return fmt.Errorf("backend must be colly or resty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	if c.RepeatWindow < 0 {
		return fmt.Errorf("repeat window cannot be negative")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "json" && c.OutputFormat != "csv" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be json, csv, or dual")
	}

	return nil
}
