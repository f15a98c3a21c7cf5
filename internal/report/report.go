// Package report prints a check result for the operator.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kuitang/langcheck/internal/check"
	"github.com/kuitang/langcheck/internal/errs"
	"github.com/kuitang/langcheck/internal/logutil"
)

// SuccessMessage is printed when every step passed.
const SuccessMessage = "Verification passed!"

const previewLimit = 200

// PrintResult writes the outcome of a run to w.
func PrintResult(res *check.Result, w io.Writer) {
	if res == nil {
		fmt.Fprintln(w, "No result available.")
		return
	}

	success := color.New(color.FgGreen).SprintFunc()
	failure := color.New(color.FgRed).SprintFunc()
	highlight := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if res.Passed() {
		fmt.Fprintln(w, success(SuccessMessage))
	} else {
		fmt.Fprintf(w, "%s %s\n", failure("Error:"), errs.MessageOf(res.Err))
		if cause := causeOf(res.Err); cause != "" {
			fmt.Fprintf(w, "  %s %s\n", faint("cause:"), cause)
		}
		if res.FailedStep != "" {
			fmt.Fprintf(w, "  %s %s (%s)\n", faint("step:"), res.FailedStep, res.Code())
		}
		if d := res.Diagnostics; d != nil {
			if d.URL != "" {
				fmt.Fprintf(w, "  %s %s\n", faint("page:"), d.URL)
			}
			if d.Preview != "" {
				fmt.Fprintf(w, "  %s %s\n", faint("text:"), logutil.TruncateForLog(d.Preview, previewLimit))
			}
		}
	}

	if len(res.Screenshots) > 0 {
		fmt.Fprintln(w, "Screenshots:")
		for _, loc := range res.Screenshots {
			fmt.Fprintf(w, "  %s\n", highlight(loc))
		}
	}
	fmt.Fprintf(w, "%s\n", faint(fmt.Sprintf("run %s in %s", res.RunID, res.Duration().Round(time.Millisecond))))
}

// causeOf returns the first line of the wrapped cause. Playwright errors
// carry multi-line call logs that are noise on the console.
func causeOf(err error) string {
	cause := errs.CauseOf(err)
	if cause == nil {
		return ""
	}
	line, _, _ := strings.Cut(cause.Error(), "\n")
	return strings.TrimSpace(line)
}
