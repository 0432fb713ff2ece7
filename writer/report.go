package writer

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// DiagnosticLine is the minimal shape a report printer needs from an
// evaluator diagnostic, kept decoupled from the engine package so writer has
// no import-cycle risk back into it.
type DiagnosticLine struct {
	Severity string // "warning" or "error"
	Command  string
	File     string
	Line     int
	Message  string
}

// RunSummary is the minimal shape a report printer needs from a run report.
type RunSummary struct {
	RunID        string
	Status       string
	WarningCount int
	ErrorCount   int
	Fatal        bool
}

// PrintReport writes diagnostics followed by a one-line colored summary to w.
// Errors print in red, warnings in yellow, matching the severity coloring
// convention used for command-runner output elsewhere in the pack.
func PrintReport(w io.Writer, diags []DiagnosticLine, summary RunSummary) {
	errColor := color.New(color.FgRed)
	warnColor := color.New(color.FgYellow)
	for _, d := range diags {
		c := warnColor
		if d.Severity == "error" {
			c = errColor
		}
		location := d.File
		if d.Line > 0 {
			location = fmt.Sprintf("%s:%d", d.File, d.Line)
		}
		c.Fprintf(w, "%s: %s: %s: %s\n", location, d.Severity, d.Command, d.Message)
	}

	summaryColor := color.New(color.FgGreen)
	if summary.Fatal || summary.ErrorCount > 0 {
		summaryColor = errColor
	} else if summary.WarningCount > 0 {
		summaryColor = warnColor
	}
	summaryColor.Fprintf(w, "run %s: %s (%d warnings, %d errors)\n",
		summary.RunID, summary.Status, summary.WarningCount, summary.ErrorCount)
}
