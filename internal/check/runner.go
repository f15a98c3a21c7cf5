// Package check runs the language-switch acceptance check: it drives a
// browser through a fixed script, asserts the visible text at each step and
// stores screenshot evidence.
package check

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kuitang/langcheck/internal/browser"
	"github.com/kuitang/langcheck/internal/errs"
	"github.com/kuitang/langcheck/internal/evidence"
	"github.com/kuitang/langcheck/internal/obs"
)

// Browser is the page-level surface the runner drives. *browser.Session
// implements it.
type Browser interface {
	Goto(url string) error
	WaitForText(text string) error
	ExpectVisible(text string) error
	Click(text string) error
	Screenshot() ([]byte, error)
	Diagnostics() browser.Diagnostics
	Close() error
}

// Launcher acquires a browser session for one run.
type Launcher func(ctx context.Context) (Browser, error)

// BrowserLauncher returns a Launcher backed by Playwright.
func BrowserLauncher(opts browser.Options) Launcher {
	return func(ctx context.Context) (Browser, error) {
		s, err := browser.Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Runner executes a script against one URL.
type Runner struct {
	URL      string
	Script   []Step
	Launch   Launcher
	Evidence evidence.Store
}

// NewRunner returns a runner for the language-switch script.
func NewRunner(url string, launch Launcher, store evidence.Store) *Runner {
	return &Runner{
		URL:      url,
		Script:   LanguageSwitchScript,
		Launch:   launch,
		Evidence: store,
	}
}

// StepResult records one completed step.
type StepResult struct {
	Name     string
	Action   Action
	Duration time.Duration
}

// Result is the outcome of one run. Err is nil on success and a coded
// *errs.Error otherwise.
type Result struct {
	RunID       string
	URL         string
	StartedAt   time.Time
	FinishedAt  time.Time
	Steps       []StepResult
	Screenshots []string
	FailedStep  string
	Diagnostics *browser.Diagnostics
	Err         error
}

// Passed reports whether every step succeeded.
func (r *Result) Passed() bool {
	return r.Err == nil
}

// Code returns the failure code, or "" on success.
func (r *Result) Code() errs.Code {
	if r.Err == nil {
		return ""
	}
	return errs.CodeOf(r.Err)
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Run executes the script. The browser session is acquired once and released
// on every exit path. Run never panics on a check failure.
func (r *Runner) Run(ctx context.Context) (res *Result) {
	runID := obs.NewRunID()
	ctx = obs.WithRunID(ctx, runID)
	log := obs.From(ctx).With("pkg", "check")

	res = &Result{
		RunID:     runID,
		URL:       r.URL,
		StartedAt: time.Now(),
	}
	var current string
	defer func() {
		if p := recover(); p != nil {
			res.FailedStep = current
			res.Err = errs.New(errs.Internal, fmt.Sprintf("unexpected panic: %v", p))
		}
		res.FinishedAt = time.Now()
		if res.Passed() {
			log.Info("check_passed", "dur_ms", res.Duration().Milliseconds(), "screenshots", len(res.Screenshots))
		} else {
			log.Error("check_failed",
				"code", res.Code(),
				"failed_step", res.FailedStep,
				"error", res.Err,
				"dur_ms", res.Duration().Milliseconds(),
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = errs.Wrap(errs.Canceled, "check canceled before start", err)
		return res
	}

	b, err := r.Launch(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Err = errs.Wrap(errs.Canceled, "check canceled while starting the browser", errors.Join(ctxErr, err))
			return res
		}
		res.Err = errs.Wrap(errs.Unavailable, "browser could not be started", err)
		return res
	}
	closeBrowser := sync.OnceValue(b.Close)
	// Closing on cancel aborts an in-flight step instead of waiting out its bound.
	stopAbort := context.AfterFunc(ctx, func() { _ = closeBrowser() })
	defer func() {
		stopAbort()
		if err := closeBrowser(); err != nil && ctx.Err() == nil {
			log.Warn("browser_close_failed", "error", err)
		}
	}()

	log.Info("check_started", "url", r.URL, "steps", len(r.Script))

	for _, step := range r.Script {
		if err := ctx.Err(); err != nil {
			res.FailedStep = step.Name
			res.Err = errs.Wrap(errs.Canceled, fmt.Sprintf("check canceled before %s", step.Name), err)
			return res
		}

		current = step.Name
		stepCtx := obs.WithStep(ctx, step.Name)
		start := time.Now()
		location, err := r.runStep(stepCtx, b, step)
		if err != nil {
			res.FailedStep = step.Name
			if ctxErr := ctx.Err(); ctxErr != nil {
				res.Err = errs.Wrap(errs.Canceled, fmt.Sprintf("check canceled during %s", step.Name), errors.Join(ctxErr, err))
				return res
			}
			res.Err = classify(step, r.URL, err)
			diag := b.Diagnostics()
			res.Diagnostics = &diag
			obs.From(stepCtx).With("pkg", "check").Warn("step_failed",
				"action", step.Action,
				"text", step.Text,
				"current_url", diag.URL,
				"title", diag.Title,
				"content_preview", diag.Preview,
			)
			return res
		}

		elapsed := time.Since(start)
		res.Steps = append(res.Steps, StepResult{Name: step.Name, Action: step.Action, Duration: elapsed})
		if location != "" {
			res.Screenshots = append(res.Screenshots, location)
		}
		obs.From(stepCtx).With("pkg", "check").Debug("step_done", "dur_ms", elapsed.Milliseconds(), "location", location)
	}

	return res
}

func (r *Runner) runStep(ctx context.Context, b Browser, step Step) (string, error) {
	switch step.Action {
	case ActionNavigate:
		return "", b.Goto(r.URL)
	case ActionWaitReady:
		return "", b.WaitForText(step.Text)
	case ActionExpectVisible:
		return "", b.ExpectVisible(step.Text)
	case ActionClick:
		return "", b.Click(step.Text)
	case ActionScreenshot:
		png, err := b.Screenshot()
		if err != nil {
			return "", err
		}
		return r.Evidence.Save(ctx, step.Screenshot, png)
	default:
		return "", fmt.Errorf("unknown action %q", step.Action)
	}
}

// classify maps a step failure to its error code.
func classify(step Step, url string, err error) error {
	switch step.Action {
	case ActionNavigate:
		return errs.Wrap(errs.Unreachable, fmt.Sprintf("could not reach %s", url), err)
	case ActionWaitReady:
		if browser.IsTimeout(err) {
			return errs.Wrap(errs.ReadinessTimeout, fmt.Sprintf("page never showed %q", step.Text), err)
		}
		return errs.Wrap(errs.Internal, fmt.Sprintf("waiting for %q failed", step.Text), err)
	case ActionExpectVisible:
		return errs.Wrap(errs.AssertionFailed, fmt.Sprintf("expected %q to be visible", step.Text), err)
	case ActionClick:
		return errs.Wrap(errs.LookupFailed, fmt.Sprintf("could not click %q", step.Text), err)
	case ActionScreenshot:
		return errs.Wrap(errs.Internal, fmt.Sprintf("could not save screenshot %s", step.Screenshot), err)
	default:
		return errs.Wrap(errs.Internal, fmt.Sprintf("step %s failed", step.Name), err)
	}
}
