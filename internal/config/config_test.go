package config

import (
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var configEnvKeys = []string{
	"VERIFY_URL",
	"VERIFY_TIMEOUT",
	"VERIFY_BROWSER",
	"VERIFY_HEADLESS",
	"VERIFY_INSTALL",
	"VERIFY_VIEWPORT_WIDTH",
	"VERIFY_VIEWPORT_HEIGHT",
	"VERIFY_SCREENSHOT_DIR",
	"EVIDENCE_BUCKET",
	"EVIDENCE_PREFIX",
	"AWS_ENDPOINT_URL_S3",
	"AWS_REGION",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func validTestConfig() Config {
	return Config{
		URL:            DefaultURL,
		Timeout:        DefaultTimeout,
		Browser:        DefaultBrowser,
		Headless:       true,
		ViewportWidth:  DefaultViewportW,
		ViewportHeight: DefaultViewportH,
		ScreenshotDir:  DefaultScreenshotDir,
		AWSRegion:      DefaultEvidenceRegion,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(Flags{})
	if err != nil {
		t.Fatalf("LoadConfig with no input failed: %v", err)
	}
	if cfg.URL != "http://localhost:5173" {
		t.Errorf("URL = %q, want http://localhost:5173", cfg.URL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.ScreenshotDir != "verification" {
		t.Errorf("ScreenshotDir = %q, want verification", cfg.ScreenshotDir)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Browser != "chromium" {
		t.Errorf("Browser = %q, want chromium", cfg.Browser)
	}
	if cfg.EvidenceEnabled() {
		t.Error("evidence mirror should be disabled without EVIDENCE_BUCKET")
	}
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("VERIFY_URL", "http://env.example:3000")
	t.Setenv("VERIFY_TIMEOUT", "3s")
	t.Setenv("VERIFY_SCREENSHOT_DIR", "env-shots")
	t.Setenv("VERIFY_BROWSER", "firefox")

	flags, err := ParseFlags([]string{
		"-url", "http://127.0.0.1:4173",
		"-timeout", "2500ms",
		"-out", "flag-shots",
		"-browser", "WebKit",
		"-headed",
	}, io.Discard)
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg, err := LoadConfig(flags)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.URL != "http://127.0.0.1:4173" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Timeout != 2500*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.ScreenshotDir != "flag-shots" {
		t.Errorf("ScreenshotDir = %q", cfg.ScreenshotDir)
	}
	if cfg.Browser != "webkit" {
		t.Errorf("Browser = %q", cfg.Browser)
	}
	if cfg.Headless {
		t.Error("-headed should disable headless mode")
	}
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("VERIFY_URL", "https://staging.example")
	t.Setenv("VERIFY_TIMEOUT", "1500")
	t.Setenv("VERIFY_HEADLESS", "false")
	t.Setenv("EVIDENCE_BUCKET", "shots")
	t.Setenv("EVIDENCE_PREFIX", "/ci/lang/")

	cfg, err := LoadConfig(Flags{})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Errorf("bare integer timeout should be milliseconds, got %v", cfg.Timeout)
	}
	if cfg.Headless {
		t.Error("VERIFY_HEADLESS=false should disable headless mode")
	}
	if !cfg.EvidenceEnabled() {
		t.Error("EVIDENCE_BUCKET should enable the mirror")
	}
	if cfg.EvidencePrefix != "ci/lang" {
		t.Errorf("EvidencePrefix = %q, want ci/lang", cfg.EvidencePrefix)
	}
}

func TestParseFlags_RejectsPositionalArgs(t *testing.T) {
	if _, err := ParseFlags([]string{"extra"}, io.Discard); err == nil {
		t.Fatal("expected error for positional arguments")
	}
	if _, err := ParseFlags([]string{"-no-such-flag"}, io.Discard); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	t.Parallel()
	cfg := validTestConfig()
	cfg.URL = "localhost:5173"
	cfg.Timeout = 0
	cfg.Browser = "netscape"
	cfg.ScreenshotDir = " "
	cfg.EvidenceBucket = "bucket"
	cfg.AWSAccessKeyID = "only-half"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !IsValidationError(err) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	msg := err.Error()
	for _, expected := range []string{
		"VERIFY_URL",
		"VERIFY_TIMEOUT",
		"VERIFY_BROWSER",
		"VERIFY_SCREENSHOT_DIR",
		"AWS_SECRET_ACCESS_KEY",
	} {
		if !strings.Contains(msg, expected) {
			t.Fatalf("expected validation error to mention %q, got: %v", expected, err)
		}
	}
}

func testValidate_AcceptsHTTPURLs(t *rapid.T) {
	cfg := validTestConfig()
	scheme := rapid.SampledFrom([]string{"http", "https"}).Draw(t, "scheme")
	host := rapid.StringMatching(`[a-z][a-z0-9-]{0,20}`).Draw(t, "host")
	port := rapid.IntRange(1, 65535).Draw(t, "port")
	cfg.URL = scheme + "://" + host + ":" + strconv.Itoa(port)
	cfg.Timeout = time.Duration(rapid.IntRange(1, 60_000).Draw(t, "timeout_ms")) * time.Millisecond

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected %q to validate, got %v", cfg.URL, err)
	}
}

func TestValidate_AcceptsHTTPURLs(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testValidate_AcceptsHTTPURLs)
}

func testValidate_RejectsNonHTTPSchemes(t *rapid.T) {
	cfg := validTestConfig()
	scheme := rapid.SampledFrom([]string{"ftp", "file", "ws", "chrome"}).Draw(t, "scheme")
	cfg.URL = scheme + "://localhost:5173"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "VERIFY_URL") {
		t.Fatalf("expected VERIFY_URL error for %q, got %v", cfg.URL, err)
	}
}

func TestValidate_RejectsNonHTTPSchemes(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testValidate_RejectsNonHTTPSchemes)
}

func TestHelperParsers_DefaultOnBadInput(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "not-an-int")
	t.Setenv("CFG_TEST_BOOL", "perhaps")
	t.Setenv("CFG_TEST_DUR", "not-a-duration")
	if got := parseIntOrDefault("CFG_TEST_INT", 7); got != 7 {
		t.Fatalf("parseIntOrDefault fallback mismatch: got=%d want=7", got)
	}
	if got := parseBoolOrDefault("CFG_TEST_BOOL", true); got != true {
		t.Fatalf("parseBoolOrDefault fallback mismatch: got=%v want=true", got)
	}
	if got := parseDurationOrDefault("CFG_TEST_DUR", 2*time.Minute); got != 2*time.Minute {
		t.Fatalf("parseDurationOrDefault fallback mismatch: got=%v want=%v", got, 2*time.Minute)
	}
}

func TestGetEnvOrDefault_TrimsWhitespace(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "   value   ")
	if got := getEnvOrDefault("CFG_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("getEnvOrDefault trim mismatch: got=%q want=%q", got, "value")
	}
}

func TestPrintStartupSummary_MentionsTarget(t *testing.T) {
	cfg := validTestConfig()
	cfg.EvidenceBucket = "shots"
	cfg.EvidencePrefix = "verification"

	var sb strings.Builder
	cfg.PrintStartupSummary(&sb)
	out := sb.String()
	for _, expected := range []string{"http://localhost:5173", "chromium (headless, 1280x800)", "s3://shots/verification"} {
		if !strings.Contains(out, expected) {
			t.Errorf("summary missing %q:\n%s", expected, out)
		}
	}
}
