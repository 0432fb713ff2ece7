package engine

import (
	"github.com/go-errors/errors"
	"github.com/google/uuid"
)

// Severity is a diagnostic's severity level.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "Error"
	}
	return "Warning"
}

// ErrorClass taxonomizes a diagnostic's cause (spec.md §7).
type ErrorClass int

const (
	ClassInputError ErrorClass = iota
	ClassEngineLimitation
	ClassIoEnvError
	ClassPolicyConflict
)

func (c ErrorClass) String() string {
	switch c {
	case ClassInputError:
		return "InputError"
	case ClassEngineLimitation:
		return "EngineLimitation"
	case ClassIoEnvError:
		return "IoEnvError"
	case ClassPolicyConflict:
		return "PolicyConflict"
	default:
		return "InputError"
	}
}

// Diagnostic is one emitted diagnostic record (spec.md §4.10).
type Diagnostic struct {
	Severity  Severity
	Component string
	Command   string
	Origin    Origin
	Cause     string
	Hint      string
	Class     ErrorClass
	Code      string

	// WrappedErr carries a stack-traced cause for error diagnostics raised
	// from a Go error (e.g. an os.PathError); nil for diagnostics raised
	// directly from evaluator logic.
	WrappedErr *errors.Error
}

// OverallStatus is the run report's terminal classification.
type OverallStatus int

const (
	StatusOk OverallStatus = iota
	StatusOkWithWarnings
	StatusOkWithErrors
	StatusFatal
)

func (s OverallStatus) String() string {
	switch s {
	case StatusOkWithWarnings:
		return "OkWithWarnings"
	case StatusOkWithErrors:
		return "OkWithErrors"
	case StatusFatal:
		return "Fatal"
	default:
		return "Ok"
	}
}

// RunReport accumulates diagnostic counters across one evaluation run.
type RunReport struct {
	RunID string

	WarningCount int
	ErrorCount   int
	CountByClass map[ErrorClass]int

	Fatal bool
}

// NewRunReport returns a RunReport with a fresh run id.
func NewRunReport() *RunReport {
	return &RunReport{
		RunID:        uuid.NewString(),
		CountByClass: make(map[ErrorClass]int),
	}
}

// Record updates the report's counters for d.
func (r *RunReport) Record(d *Diagnostic) {
	switch d.Severity {
	case SeverityError:
		r.ErrorCount++
	case SeverityWarning:
		r.WarningCount++
	}
	r.CountByClass[d.Class]++
}

// MarkFatal forces the run's overall status to Fatal (allocation failure or
// explicit stop, spec.md §4.10).
func (r *RunReport) MarkFatal() {
	r.Fatal = true
}

// OverallStatus derives the run's terminal status from its counters.
func (r *RunReport) OverallStatus() OverallStatus {
	switch {
	case r.Fatal:
		return StatusFatal
	case r.ErrorCount > 0:
		return StatusOkWithErrors
	case r.WarningCount > 0:
		return StatusOkWithWarnings
	default:
		return StatusOk
	}
}

// newWrappedFatal builds an Error-severity Diagnostic for an underlying Go
// error, keeping a go-errors stack trace on WrappedErr; Cause holds only the
// error message, and the run is not marked fatal.
func newWrappedFatal(component, command string, origin Origin, cause error, class ErrorClass, code string) *Diagnostic {
	wrapped := errors.Wrap(cause, 1)
	return &Diagnostic{
		Severity:   SeverityError,
		Component:  component,
		Command:    command,
		Origin:     origin,
		Cause:      wrapped.Error(),
		Class:      class,
		Code:       code,
		WrappedErr: wrapped,
	}
}
