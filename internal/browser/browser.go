// Package browser wraps a Playwright browser and a single page behind a
// scoped session. Every text lookup is an exact match and every wait is
// bounded by the session timeout.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/langcheck/internal/logutil"
	"github.com/kuitang/langcheck/internal/obs"
)

const (
	contentPreviewChars = 500
	maxDiagnosticsWait  = 2 * time.Second
)

// Options configures Launch.
type Options struct {
	Browser         string // chromium, firefox or webkit
	Headless        bool
	InstallBrowsers bool
	ViewportWidth   int
	ViewportHeight  int
	Timeout         time.Duration
}

// Diagnostics is a snapshot of the page taken when a step fails.
type Diagnostics struct {
	URL     string
	Title   string
	Preview string
}

// Session owns the Playwright driver, the browser process and one page.
// Close releases all three and is safe to call more than once.
type Session struct {
	*Page

	pw      *playwright.Playwright
	browser playwright.Browser

	closeOnce sync.Once
	closeErr  error
}

// Page is the single navigable document of a session.
type Page struct {
	page      playwright.Page
	timeoutMS float64
}

// Launch starts Playwright, launches the configured browser and opens a page.
// The caller owns the returned session and must Close it.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	log := obs.From(ctx).With("pkg", "browser")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if opts.InstallBrowsers {
		log.Info("browser_install", "browser", opts.Browser)
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{opts.Browser}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browserType, err := browserTypeFor(pw, opts.Browser)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", opts.Browser, err)
	}

	pageOpts := playwright.BrowserNewPageOptions{}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		pageOpts.Viewport = &playwright.Size{Width: opts.ViewportWidth, Height: opts.ViewportHeight}
	}
	page, err := b.NewPage(pageOpts)
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("new page: %w", err)
	}

	timeoutMS := float64(opts.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeoutMS)
	page.SetDefaultNavigationTimeout(timeoutMS)

	log.Info("browser_launched",
		"browser", opts.Browser,
		"headless", opts.Headless,
		"version", b.Version(),
	)

	return &Session{
		Page:    &Page{page: page, timeoutMS: timeoutMS},
		pw:      pw,
		browser: b,
	}, nil
}

func (o Options) validate() error {
	if o.Timeout <= 0 {
		return errors.New("browser: timeout must be positive")
	}
	switch o.Browser {
	case "chromium", "firefox", "webkit":
		return nil
	default:
		return fmt.Errorf("browser: unsupported browser %q", o.Browser)
	}
}

func browserTypeFor(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("browser: unsupported browser %q", name)
	}
}

// Close shuts down the browser and the Playwright driver exactly once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if s.pw != nil {
			if err := s.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop playwright: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// Goto navigates to url and waits for the load event.
func (p *Page) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(p.timeoutMS),
	})
	return err
}

// WaitForText blocks until an element whose text is exactly text is visible.
func (p *Page) WaitForText(text string) error {
	return p.byText(text).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(p.timeoutMS),
	})
}

// ExpectVisible asserts that exactly one element with text is visible,
// retrying until the timeout.
func (p *Page) ExpectVisible(text string) error {
	return playwright.NewPlaywrightAssertions(p.timeoutMS).
		Locator(p.byText(text)).
		ToBeVisible()
}

// Click clicks the element whose text is exactly text.
func (p *Page) Click(text string) error {
	return p.byText(text).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(p.timeoutMS),
	})
}

// Screenshot captures the viewport as PNG.
func (p *Page) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		Type:    playwright.ScreenshotTypePng,
		Timeout: playwright.Float(p.timeoutMS),
	})
}

// Diagnostics snapshots the current URL, title and visible text. It runs on
// failure paths, so the title and content reads are bounded and skipped for
// a closed page.
func (p *Page) Diagnostics() Diagnostics {
	d := Diagnostics{URL: p.page.URL()}
	if p.page.IsClosed() {
		return d
	}
	title, content, ok := snapshotWithin(p.diagnosticsBound(), func() (string, string) {
		title, _ := p.page.Title()
		content, _ := p.page.Content()
		return title, content
	})
	if !ok {
		return d
	}
	d.Title = title
	if content != "" {
		d.Preview = logutil.VisibleTextPreview(content, contentPreviewChars)
	}
	return d
}

func (p *Page) diagnosticsBound() time.Duration {
	bound := time.Duration(p.timeoutMS) * time.Millisecond
	if bound <= 0 || bound > maxDiagnosticsWait {
		return maxDiagnosticsWait
	}
	return bound
}

// snapshotWithin runs read and gives up after bound. A read that outlives
// the bound finishes in the background and its result is dropped.
func snapshotWithin(bound time.Duration, read func() (string, string)) (string, string, bool) {
	type snapshot struct{ title, content string }
	ch := make(chan snapshot, 1)
	go func() {
		title, content := read()
		ch <- snapshot{title, content}
	}()

	timer := time.NewTimer(bound)
	defer timer.Stop()
	select {
	case s := <-ch:
		return s.title, s.content, true
	case <-timer.C:
		return "", "", false
	}
}

func (p *Page) byText(text string) playwright.Locator {
	return p.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(true),
	})
}

// IsTimeout reports whether err is a Playwright timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}
