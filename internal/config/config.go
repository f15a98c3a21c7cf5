// Package config provides configuration for the language-switch acceptance check.
// It loads configuration from CLI flags and environment variables, validates
// the result, and defaults to a local Vite dev server on port 5173.
//
// CLI flags override environment variables. Evidence mirroring to S3 is enabled
// only when EVIDENCE_BUCKET is set.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultURL            = "http://localhost:5173"
	DefaultScreenshotDir  = "verification"
	DefaultTimeout        = 10 * time.Second
	DefaultBrowser        = "chromium"
	DefaultViewportW      = 1280
	DefaultViewportH      = 800
	DefaultEvidenceRegion = "auto"
	DefaultEvidencePrefix = "verification"
)

var supportedBrowsers = []string{"chromium", "firefox", "webkit"}

// Config holds all check configuration.
type Config struct {
	// Target and timing
	URL     string
	Timeout time.Duration // Bound applied to every wait

	// Browser
	Browser         string // chromium, firefox or webkit
	Headless        bool
	InstallBrowsers bool // Download Playwright browsers before launching
	ViewportWidth   int
	ViewportHeight  int

	// Local evidence
	ScreenshotDir string

	// S3 evidence mirror (uses the same AWS_ env vars as Tigris/fly storage)
	EvidenceBucket     string // EVIDENCE_BUCKET
	EvidencePrefix     string // EVIDENCE_PREFIX
	AWSEndpointS3      string // AWS_ENDPOINT_URL_S3
	AWSRegion          string // AWS_REGION
	AWSAccessKeyID     string // AWS_ACCESS_KEY_ID
	AWSSecretAccessKey string // AWS_SECRET_ACCESS_KEY
}

// Flags holds CLI flag values. Zero values mean "not set on the command line".
type Flags struct {
	URL           string
	ScreenshotDir string
	Browser       string
	Timeout       time.Duration
	Headed        bool
	Install       bool
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI arguments (without the program name).
func ParseFlags(args []string, output io.Writer) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet("verify-language", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&f.URL, "url", "", "Target URL (default "+DefaultURL+", overrides VERIFY_URL)")
	fs.StringVar(&f.ScreenshotDir, "out", "", "Screenshot directory (default "+DefaultScreenshotDir+", overrides VERIFY_SCREENSHOT_DIR)")
	fs.StringVar(&f.Browser, "browser", "", "Browser engine: chromium, firefox or webkit (overrides VERIFY_BROWSER)")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Bound for every wait (default 10s, overrides VERIFY_TIMEOUT)")
	fs.BoolVar(&f.Headed, "headed", false, "Run with a visible browser window")
	fs.BoolVar(&f.Install, "install", false, "Install Playwright browsers before running")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	if fs.NArg() > 0 {
		return Flags{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return f, nil
}

// LoadConfig loads configuration from environment variables and CLI flag values.
func LoadConfig(f Flags) (*Config, error) {
	cfg := &Config{}

	cfg.URL = getEnvOrDefault("VERIFY_URL", DefaultURL)
	if f.URL != "" {
		cfg.URL = strings.TrimSpace(f.URL)
	}
	cfg.Timeout = parseDurationOrDefault("VERIFY_TIMEOUT", DefaultTimeout)
	if f.Timeout != 0 {
		cfg.Timeout = f.Timeout
	}

	cfg.Browser = strings.ToLower(getEnvOrDefault("VERIFY_BROWSER", DefaultBrowser))
	if f.Browser != "" {
		cfg.Browser = strings.ToLower(strings.TrimSpace(f.Browser))
	}
	cfg.Headless = parseBoolOrDefault("VERIFY_HEADLESS", true)
	if f.Headed {
		cfg.Headless = false
	}
	cfg.InstallBrowsers = f.Install || parseBoolOrDefault("VERIFY_INSTALL", false)
	cfg.ViewportWidth = parseIntOrDefault("VERIFY_VIEWPORT_WIDTH", DefaultViewportW)
	cfg.ViewportHeight = parseIntOrDefault("VERIFY_VIEWPORT_HEIGHT", DefaultViewportH)

	cfg.ScreenshotDir = getEnvOrDefault("VERIFY_SCREENSHOT_DIR", DefaultScreenshotDir)
	if f.ScreenshotDir != "" {
		cfg.ScreenshotDir = strings.TrimSpace(f.ScreenshotDir)
	}

	cfg.EvidenceBucket = getEnvOrDefault("EVIDENCE_BUCKET", "")
	cfg.EvidencePrefix = strings.Trim(getEnvOrDefault("EVIDENCE_PREFIX", DefaultEvidencePrefix), "/")
	cfg.AWSEndpointS3 = getEnvOrDefault("AWS_ENDPOINT_URL_S3", "")
	cfg.AWSRegion = getEnvOrDefault("AWS_REGION", DefaultEvidenceRegion)
	cfg.AWSAccessKeyID = getEnvOrDefault("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnvOrDefault("AWS_SECRET_ACCESS_KEY", "")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.URL == "" {
		errs = append(errs, "VERIFY_URL must not be empty")
	} else if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("VERIFY_URL must be an absolute http(s) URL, got %q", c.URL))
	}

	if c.Timeout <= 0 {
		errs = append(errs, "VERIFY_TIMEOUT must be positive")
	}

	if !isSupportedBrowser(c.Browser) {
		errs = append(errs, fmt.Sprintf("VERIFY_BROWSER must be one of %s, got %q", strings.Join(supportedBrowsers, ", "), c.Browser))
	}

	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		errs = append(errs, "VERIFY_VIEWPORT_WIDTH and VERIFY_VIEWPORT_HEIGHT must be positive")
	}

	if strings.TrimSpace(c.ScreenshotDir) == "" {
		errs = append(errs, "VERIFY_SCREENSHOT_DIR must not be empty")
	}

	// S3 mirror: credentials come as a pair or not at all (default chain).
	if c.EvidenceEnabled() {
		if (c.AWSAccessKeyID == "") != (c.AWSSecretAccessKey == "") {
			errs = append(errs, "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
		}
		if c.AWSRegion == "" {
			errs = append(errs, "AWS_REGION is required when EVIDENCE_BUCKET is set")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// EvidenceEnabled returns true when screenshots are mirrored to S3.
func (c *Config) EvidenceEnabled() bool {
	return c.EvidenceBucket != ""
}

// PrintStartupSummary prints a human-readable summary of the configuration.
func (c *Config) PrintStartupSummary(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "language check starting...")
	fmt.Fprintf(w, "  Target:   %s\n", c.URL)
	mode := "headless"
	if !c.Headless {
		mode = "headed"
	}
	fmt.Fprintf(w, "  Browser:  %s (%s, %dx%d)\n", c.Browser, mode, c.ViewportWidth, c.ViewportHeight)
	fmt.Fprintf(w, "  Timeout:  %s\n", c.Timeout)
	fmt.Fprintf(w, "  Evidence: %s\n", c.ScreenshotDir)
	if c.EvidenceEnabled() {
		endpoint := c.AWSEndpointS3
		if endpoint == "" {
			endpoint = "default AWS endpoint"
		}
		fmt.Fprintf(w, "  Mirror:   s3://%s/%s (%s)\n", c.EvidenceBucket, c.EvidencePrefix, endpoint)
	}
	fmt.Fprintln(w, "")
}

func isSupportedBrowser(name string) bool {
	for _, b := range supportedBrowsers {
		if b == name {
			return true
		}
	}
	return false
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		// Bare integers are milliseconds.
		if ms, convErr := strconv.Atoi(strings.TrimSpace(value)); convErr == nil {
			return time.Duration(ms) * time.Millisecond
		}
		return defaultValue
	}
	return parsed
}

// IsValidationError reports whether err is a configuration validation failure.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
