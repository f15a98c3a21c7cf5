package testapp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func fetchPage(t *testing.T, opts Options) *goquery.Document {
	t.Helper()

	srv := httptest.NewServer(Handler(opts))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("Failed to get fixture page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("Failed to parse fixture page: %v", err)
	}
	return doc
}

func TestHandler_HealthyContract(t *testing.T) {
	doc := fetchPage(t, Options{Scenario: ScenarioHealthy})

	checks := []struct {
		name     string
		selector string
		expected string
	}{
		{"activities label", "#activities", "Activities"},
		{"selector label", "#lang-toggle", "en"},
		{"english option", "#lang-menu [data-lang=en]", "English"},
		{"turkish option", "#lang-menu [data-lang=tr]", "Türkçe"},
	}
	for _, check := range checks {
		got := strings.TrimSpace(doc.Find(check.selector).Text())
		if got != check.expected {
			t.Errorf("%s: got %q, want %q", check.name, got, check.expected)
		}
	}

	if _, hidden := doc.Find("#activities").Attr("hidden"); hidden {
		t.Error("activities should be visible immediately without a ready delay")
	}
	if _, hidden := doc.Find("#lang-menu").Attr("hidden"); !hidden {
		t.Error("language menu should start closed")
	}
	if !strings.Contains(doc.Find("script").Text(), "Etkinlikler") {
		t.Error("healthy scenario should ship the Turkish translation")
	}
}

func TestHandler_NeverReady(t *testing.T) {
	doc := fetchPage(t, Options{Scenario: ScenarioNeverReady})

	if doc.Find("#activities").Length() != 0 {
		t.Error("never-ready scenario must not render the activities label")
	}
	if doc.Find("#lang-toggle").Length() != 1 {
		t.Error("language selector should still be rendered")
	}
}

func TestHandler_RegressionDropsTranslation(t *testing.T) {
	doc := fetchPage(t, Options{Scenario: ScenarioRegression})

	if got := strings.TrimSpace(doc.Find("#activities").Text()); got != "Activities" {
		t.Errorf("activities label = %q", got)
	}
	if strings.Contains(doc.Find("script").Text(), "Etkinlikler") {
		t.Error("regression scenario must not contain the Turkish translation")
	}
}

func TestHandler_ReadyDelayHidesLabel(t *testing.T) {
	doc := fetchPage(t, Options{Scenario: ScenarioHealthy, ReadyDelay: 300 * time.Millisecond})

	if _, hidden := doc.Find("#activities").Attr("hidden"); !hidden {
		t.Error("activities should start hidden with a ready delay")
	}
	if !strings.Contains(doc.Find("script").Text(), "300") {
		t.Error("script should carry the ready delay")
	}
}

func TestHandler_Health(t *testing.T) {
	srv := httptest.NewServer(Handler(Options{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to get health endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatalf("Failed to get missing path: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown path, got %d", resp2.StatusCode)
	}
}

func TestParseScenario(t *testing.T) {
	for _, s := range Scenarios {
		got, err := ParseScenario(" " + strings.ToUpper(string(s)) + " ")
		if err != nil || got != s {
			t.Errorf("ParseScenario(%q) = %q, %v", s, got, err)
		}
	}
	if got, err := ParseScenario(""); err != nil || got != ScenarioHealthy {
		t.Errorf("empty scenario should default to healthy, got %q, %v", got, err)
	}
	if _, err := ParseScenario("chaos"); err == nil {
		t.Error("expected error for unknown scenario")
	}
}

func TestHandler_NearMissScenarios(t *testing.T) {
	cases := []struct {
		scenario   Scenario
		activities string
		label      string
		turkish    string
	}{
		{ScenarioNearMiss, "Activities overview", "en", "Etkinlikler"},
		{ScenarioUpperLabel, "Activities", "EN", "Etkinlikler"},
		{ScenarioLooseTranslation, "Activities", "en", "Etkinlikler listesi"},
	}
	for _, tc := range cases {
		t.Run(string(tc.scenario), func(t *testing.T) {
			doc := fetchPage(t, Options{Scenario: tc.scenario})

			if got := strings.TrimSpace(doc.Find("#activities").Text()); got != tc.activities {
				t.Errorf("activities label = %q, want %q", got, tc.activities)
			}
			if got := strings.TrimSpace(doc.Find("#lang-toggle").Text()); got != tc.label {
				t.Errorf("selector label = %q, want %q", got, tc.label)
			}
			if !strings.Contains(doc.Find("script").Text(), tc.turkish) {
				t.Errorf("script should carry the Turkish text %q", tc.turkish)
			}
		})
	}
}
