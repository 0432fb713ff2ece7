package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/kythe/cmakeval/cmakelib/environment"
)

// Context is the evaluator context: the single owner of every piece of
// mutable state an evaluation run touches (spec.md §5 — single-threaded,
// cooperative, no concurrent mutation). Modeled directly on the original
// evaluator's context struct: one place holding environment, policy,
// targets, user commands, macro frames, both arenas, the event stream, the
// run report, and the cooperative flow-control flags.
type Context struct {
	Env      *environment.Environment
	Policies *PolicyEngine
	Targets  *TargetRegistry
	UserCmds *UserCommandRegistry
	Macros   MacroFrameStack

	TempArena  *Arena
	EventArena *Arena
	Events     *EventStream
	Report     *RunReport

	Security *PathPolicy
	Genex    GenexContext
	Log      *logrus.Entry

	// Loader reads and block-structures a CMake script file by path, used by
	// include(), add_subdirectory() and find_package(). It is an injected collaborator
	// rather than a hard dependency on the parser package (spec.md §1 keeps
	// the lexer/parser an excluded collaborator).
	Loader SourceLoader

	// Archive is the opaque codec backend for file(ARCHIVE_CREATE/EXTRACT)
	// (spec.md §1 excludes "the libarchive backend" as an interface-only
	// collaborator). Defaults to defaultArchiveBackend when nil.
	Archive ArchiveBackend

	// Cooperative flow-control flags (spec.md §5, §9): checked at every
	// statement boundary instead of modeled via exceptions/panics.
	StopRequested     bool
	OOM               bool
	BreakRequested    bool
	ContinueRequested bool
	ReturnRequested   bool
	LoopDepth         int

	CheckStack []checkEntry
	propsStore targetPropertyStore
}

type checkEntry struct {
	Description string
}

// NewContext wires a fresh evaluator context rooted at sourceDir/binaryDir.
func NewContext(sourceDir, binaryDir string, log *logrus.Logger) *Context {
	env := environment.New()
	eventArena := NewArena()
	c := &Context{
		Env:        env,
		Policies:   NewPolicyEngine(env),
		Targets:    NewTargetRegistry(),
		UserCmds:   NewUserCommandRegistry(),
		TempArena:  NewArena(),
		EventArena: eventArena,
		Events:     NewEventStream(eventArena),
		Report:     NewRunReport(),
		Security:   NewPathPolicy(sourceDir, binaryDir),
		Log:        log.WithField("component", "evaluator"),
	}
	c.Genex = GenexContext{ConfigName: "", ReadProperty: c.readTargetProperty}
	seedPreamble(env, sourceDir, binaryDir)
	return c
}

// seedPreamble binds the variables the driver preseeds before evaluation
// (spec.md §4.1).
func seedPreamble(env *environment.Environment, sourceDir, binaryDir string) {
	env.Set("CMAKE_VERSION", "3.27.0")
	env.Set("CMAKE_C_COMPILER_ID", "GNU")
	env.Set("CMAKE_CURRENT_SOURCE_DIR", sourceDir)
	env.Set("CMAKE_CURRENT_BINARY_DIR", binaryDir)
	env.Set("CMAKE_SOURCE_DIR", sourceDir)
	env.Set("CMAKE_BINARY_DIR", binaryDir)
	env.Set("CMAKE_MODULE_PATH", "")
	env.Set("CMAKE_PREFIX_PATH", "")
}

// targetPropertyStore holds per-target string-keyed property storage; it is
// deliberately simple (no per-config overrides) matching the evaluator's
// scope (spec.md §1 excludes generator-side resolution).
type targetPropertyStore = map[string]map[string]string

func (c *Context) readTargetProperty(target, property string) (string, bool) {
	props, ok := c.targetProps()[target]
	if !ok {
		return "", false
	}
	v, ok := props[property]
	return v, ok
}

// targetProps lazily initializes and returns the property store, stashed in
// Env's cache-backed side table would be a layering violation, so it lives
// directly on Context.
func (c *Context) targetProps() targetPropertyStore {
	if c.propsStore == nil {
		c.propsStore = make(targetPropertyStore)
	}
	return c.propsStore
}

// SetTargetProperty stores value for (target, property), used by
// set_target_properties/set_property(TARGET) handlers.
func (c *Context) SetTargetProperty(target, property, value string) {
	store := c.targetProps()
	if store[target] == nil {
		store[target] = make(map[string]string)
	}
	store[target][property] = value
}

// Diag emits a diagnostic both as an event and into the run report.
func (c *Context) Diag(d *Diagnostic) {
	c.Report.Record(d)
	c.Events.Emit(Event{Kind: EventDiagnosticEvent, Origin: d.Origin, Diagnostic: d})
	if d.Severity == SeverityError {
		c.Log.WithFields(logrus.Fields{
			"class":   d.Class.String(),
			"command": d.Command,
			"code":    d.Code,
		}).Error(d.Cause)
	} else {
		c.Log.WithFields(logrus.Fields{
			"class":   d.Class.String(),
			"command": d.Command,
			"code":    d.Code,
		}).Warn(d.Cause)
	}
}

// Fatal emits d as an error diagnostic and forces the run's overall status
// to Fatal and StopRequested to true.
func (c *Context) Fatal(d *Diagnostic) {
	d.Severity = SeverityError
	c.Diag(d)
	c.Report.MarkFatal()
	c.StopRequested = true
}

// ShouldShortCircuit reports whether the dispatcher should stop processing
// further siblings (spec.md §4.5, §5).
func (c *Context) ShouldShortCircuit() bool {
	return c.StopRequested || c.OOM || c.BreakRequested || c.ContinueRequested || c.ReturnRequested
}
