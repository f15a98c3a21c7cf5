// Command verify-language drives a browser against the desktop web app and
// checks that switching the language selector to Türkçe re-renders
// "Activities" as "Etkinlikler". Screenshots of each state are written to
// the evidence directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/kuitang/langcheck/internal/browser"
	"github.com/kuitang/langcheck/internal/check"
	"github.com/kuitang/langcheck/internal/config"
	"github.com/kuitang/langcheck/internal/errs"
	"github.com/kuitang/langcheck/internal/evidence"
	"github.com/kuitang/langcheck/internal/obs"
	"github.com/kuitang/langcheck/internal/report"
	"github.com/kuitang/langcheck/internal/s3client"
)

func main() {
	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, check.BrowserLauncher)
	stop()
	os.Exit(code)
}

// launcherFactory builds the browser launcher from resolved options.
type launcherFactory func(opts browser.Options) check.Launcher

func run(ctx context.Context, args []string, stdout, stderr io.Writer, newLauncher launcherFactory) int {
	flags, err := config.ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errs.ExitOK
		}
		return fail(stderr, errs.Wrap(errs.InvalidArgument, "invalid arguments", err))
	}

	cfg, err := config.LoadConfig(flags)
	if err != nil {
		message := "could not load configuration"
		if config.IsValidationError(err) {
			message = "invalid configuration"
		}
		return fail(stderr, errs.Wrap(errs.InvalidArgument, message, err))
	}
	cfg.PrintStartupSummary(stderr)

	store, err := buildEvidenceStore(ctx, cfg)
	if err != nil {
		return fail(stderr, errs.Wrap(errs.InvalidArgument, "evidence mirror", err))
	}

	launch := newLauncher(browser.Options{
		Browser:         cfg.Browser,
		Headless:        cfg.Headless,
		InstallBrowsers: cfg.InstallBrowsers,
		ViewportWidth:   cfg.ViewportWidth,
		ViewportHeight:  cfg.ViewportHeight,
		Timeout:         cfg.Timeout,
	})

	res := check.NewRunner(cfg.URL, launch, store).Run(ctx)
	report.PrintResult(res, stdout)
	return errs.ExitCode(res.Err)
}

// buildEvidenceStore writes screenshots to the local directory and, when a
// bucket is configured, mirrors them to S3.
func buildEvidenceStore(ctx context.Context, cfg *config.Config) (evidence.Store, error) {
	stores := evidence.Multi{evidence.NewDirStore(cfg.ScreenshotDir)}
	if !cfg.EvidenceEnabled() {
		return stores, nil
	}

	client, err := s3client.New(ctx, s3client.Config{
		Endpoint:        cfg.AWSEndpointS3,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		BucketName:      cfg.EvidenceBucket,
		UsePathStyle:    cfg.AWSEndpointS3 != "",
	})
	if err != nil {
		return nil, err
	}
	return append(stores, evidence.NewBucketStore(client, cfg.EvidencePrefix)), nil
}

// fail reports an error that stopped the run before the check started.
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed).Sprint("Error:"), err)
	return errs.ExitCode(err)
}
