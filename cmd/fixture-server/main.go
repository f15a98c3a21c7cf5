// Command fixture-server serves a stand-in for the desktop web app so the
// language check can run without the real front-end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kuitang/langcheck/internal/obs"
	"github.com/kuitang/langcheck/internal/testapp"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	Addr       string
	Scenario   testapp.Scenario
	ReadyDelay time.Duration
}

func parseOptions(args []string, output io.Writer) (options, error) {
	var (
		opts     options
		scenario string
	)
	fs := flag.NewFlagSet("fixture-server", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.Addr, "addr", ":5173", "Listen address")
	fs.StringVar(&scenario, "scenario", string(testapp.ScenarioHealthy), "Scenario: "+scenarioNames())
	fs.DurationVar(&opts.ReadyDelay, "ready-delay", 0, "Delay before \"Activities\" becomes visible")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.ReadyDelay < 0 {
		return options{}, errors.New("-ready-delay must not be negative")
	}
	s, err := testapp.ParseScenario(scenario)
	if err != nil {
		return options{}, err
	}
	opts.Scenario = s
	return opts, nil
}

func scenarioNames() string {
	names := make([]string, len(testapp.Scenarios))
	for i, s := range testapp.Scenarios {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func newServer(opts options) *http.Server {
	handler := testapp.Handler(testapp.Options{Scenario: opts.Scenario, ReadyDelay: opts.ReadyDelay})
	return &http.Server{
		Addr:              opts.Addr,
		Handler:           obs.AccessLogMiddleware("fixture", handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serve runs srv on ln until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	obs.Init()
	log := obs.Pkg("fixture")

	opts, err := parseOptions(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newServer(opts)
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		log.Error("listen_failed", "addr", opts.Addr, "error", err)
		os.Exit(1)
	}

	log.Info("fixture_listening", "addr", ln.Addr().String(), "scenario", opts.Scenario, "ready_delay_ms", opts.ReadyDelay.Milliseconds())
	fmt.Fprintf(os.Stderr, "Fixture app (%s) on http://%s\n", opts.Scenario, ln.Addr())

	if err := serve(ctx, srv, ln); err != nil {
		log.Error("serve_failed", "error", err)
		os.Exit(1)
	}
	log.Info("fixture_stopped")
}
