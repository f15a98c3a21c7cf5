// Package testapp serves a minimal desktop top bar with a language selector.
// It honours the contract the language check verifies and can be switched
// into failure scenarios for tests and local demos.
package testapp

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
)

// Scenario selects how the page behaves.
type Scenario string

const (
	// ScenarioHealthy renders "Activities" and translates it to "Etkinlikler".
	ScenarioHealthy Scenario = "healthy"
	// ScenarioNeverReady never renders "Activities".
	ScenarioNeverReady Scenario = "never-ready"
	// ScenarioRegression switches the selector label but leaves "Activities"
	// untranslated.
	ScenarioRegression Scenario = "regression"
	// ScenarioNearMiss renders "Activities overview" instead of "Activities".
	ScenarioNearMiss Scenario = "near-miss"
	// ScenarioUpperLabel labels the closed selector "EN" instead of "en".
	ScenarioUpperLabel Scenario = "upper-label"
	// ScenarioLooseTranslation translates "Activities" to "Etkinlikler listesi".
	ScenarioLooseTranslation Scenario = "loose-translation"
)

// Scenarios lists every supported scenario.
var Scenarios = []Scenario{
	ScenarioHealthy,
	ScenarioNeverReady,
	ScenarioRegression,
	ScenarioNearMiss,
	ScenarioUpperLabel,
	ScenarioLooseTranslation,
}

// ParseScenario parses a scenario name.
func ParseScenario(name string) (Scenario, error) {
	normalized := Scenario(strings.ToLower(strings.TrimSpace(name)))
	if normalized == "" {
		return ScenarioHealthy, nil
	}
	for _, s := range Scenarios {
		if s == normalized {
			return s, nil
		}
	}
	return "", fmt.Errorf("testapp: unknown scenario %q", name)
}

// Options configures the handler.
type Options struct {
	Scenario Scenario
	// ReadyDelay keeps the activities label hidden for this long after load.
	ReadyDelay time.Duration
}

type variant struct {
	ready        bool
	translations map[string]map[string]string
	labels       map[string]string
}

func translate(en, tr string) map[string]map[string]string {
	return map[string]map[string]string{
		"en": {"activities": en},
		"tr": {"activities": tr},
	}
}

var (
	codeLabels  = map[string]string{"en": "en", "tr": "tr"}
	upperLabels = map[string]string{"en": "EN", "tr": "TR"}
)

var variants = map[Scenario]variant{
	ScenarioHealthy:          {ready: true, translations: translate("Activities", "Etkinlikler"), labels: codeLabels},
	ScenarioNeverReady:       {ready: false, translations: translate("Activities", "Etkinlikler"), labels: codeLabels},
	ScenarioRegression:       {ready: true, translations: translate("Activities", "Activities"), labels: codeLabels},
	ScenarioNearMiss:         {ready: true, translations: translate("Activities overview", "Etkinlikler"), labels: codeLabels},
	ScenarioUpperLabel:       {ready: true, translations: translate("Activities", "Etkinlikler"), labels: upperLabels},
	ScenarioLooseTranslation: {ready: true, translations: translate("Activities", "Etkinlikler listesi"), labels: codeLabels},
}

type pageData struct {
	Ready        bool
	DelayMS      int64
	Activities   string
	Label        string
	Labels       map[string]string
	Translations map[string]map[string]string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Ubuntu Desktop</title>
<style>
  body { margin: 0; font-family: Ubuntu, sans-serif; background: #2c001e; color: #fff; }
  .top-bar { display: flex; justify-content: space-between; align-items: center; height: 28px; padding: 0 12px; background: #1d1d1d; }
  .language-selector { position: relative; }
  .lang-toggle { background: none; border: 0; color: #fff; font-weight: bold; text-transform: uppercase; cursor: pointer; }
  .lang-menu { position: absolute; right: 0; top: 100%; width: 128px; background: #2d2d2d; border-radius: 8px; padding: 4px 0; }
  .lang-menu button { display: block; width: 100%; text-align: left; padding: 8px 16px; background: none; border: 0; color: #ccc; cursor: pointer; }
  [hidden] { display: none !important; }
</style>
</head>
<body>
<header class="top-bar">
  {{if not .Ready}}<span id="loading">Loading…</span>
  {{else if .DelayMS}}<span id="activities" data-i18n="activities" hidden>{{.Activities}}</span>
  {{else}}<span id="activities" data-i18n="activities">{{.Activities}}</span>
  {{end}}
  <div class="language-selector">
    <button id="lang-toggle" class="lang-toggle" type="button">{{.Label}}</button>
    <div id="lang-menu" class="lang-menu" hidden>
      <button type="button" data-lang="en"><span>English</span></button>
      <button type="button" data-lang="tr"><span>Türkçe</span></button>
    </div>
  </div>
</header>
<script>
(function () {
  var translations = {{.Translations}};
  var labels = {{.Labels}};
  var delay = {{.DelayMS}};
  var toggle = document.getElementById("lang-toggle");
  var menu = document.getElementById("lang-menu");

  function apply(lang) {
    toggle.textContent = labels[lang] || lang;
    document.documentElement.lang = lang;
    var table = translations[lang] || {};
    var nodes = document.querySelectorAll("[data-i18n]");
    for (var i = 0; i < nodes.length; i++) {
      var text = table[nodes[i].getAttribute("data-i18n")];
      if (text) {
        nodes[i].textContent = text;
      }
    }
  }

  toggle.addEventListener("click", function () {
    menu.hidden = !menu.hidden;
  });

  var options = menu.querySelectorAll("button[data-lang]");
  for (var i = 0; i < options.length; i++) {
    options[i].addEventListener("click", function (ev) {
      apply(ev.currentTarget.getAttribute("data-lang"));
      menu.hidden = true;
    });
  }

  if (delay > 0) {
    setTimeout(function () {
      var el = document.getElementById("activities");
      if (el) {
        el.hidden = false;
      }
    }, delay);
  }
})();
</script>
</body>
</html>
`))

// Handler returns the fixture application.
func Handler(opts Options) http.Handler {
	v, ok := variants[opts.Scenario]
	if !ok {
		v = variants[ScenarioHealthy]
	}
	data := pageData{
		Ready:        v.ready,
		DelayMS:      opts.ReadyDelay.Milliseconds(),
		Activities:   v.translations["en"]["activities"],
		Label:        v.labels["en"],
		Labels:       v.labels,
		Translations: v.translations,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTemplate.Execute(w, data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
