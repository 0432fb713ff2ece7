package engine_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kythe/cmakeval/cmakelib/ast"
	"github.com/kythe/cmakeval/engine"
)

// testLogger returns a logrus.Logger that discards output, matching the
// dispatcher/driver's structured-logging idiom without spamming test output.
func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// run parses and evaluates src as a single CMakeLists.txt rooted at
// /src and /bin, returning the populated context for assertion.
func run(t *testing.T, src string) *engine.Context {
	t.Helper()
	file, err := ast.NewParser().ParseString(src)
	require.NoError(t, err, "parse")
	nodes, err := engine.BuildBlocks(file.Commands)
	require.NoError(t, err, "build blocks")

	ctx := engine.NewContext("/src", "/bin", testLogger())
	require.NoError(t, engine.ExecuteFile(ctx, nodes))
	return ctx
}

// S1 — set & expand: a semicolon list iterated via foreach(IN LISTS) binds
// a derived variable per item.
func TestSetAndForeachExpand(t *testing.T) {
	ctx := run(t, `
set(A "b;c")
foreach(x IN LISTS A)
  set(${x}_seen 1)
endforeach()
`)
	assert.Equal(t, "1", ctx.Env.Get("b_seen"))
	assert.Equal(t, "1", ctx.Env.Get("c_seen"))
}

// S2 — target declare: project + add_executable emits the events in order
// and registers the target.
func TestProjectAndAddExecutableEvents(t *testing.T) {
	ctx := run(t, `
project(p)
add_executable(app main.c extra.c)
`)
	events := ctx.Events.Events()
	require.Len(t, events, 4)

	assert.Equal(t, engine.EventProjectDeclare, events[0].Kind)
	assert.Equal(t, "p", events[0].Name)

	assert.Equal(t, engine.EventTargetDeclare, events[1].Kind)
	assert.Equal(t, "app", events[1].Target)
	assert.Equal(t, engine.TargetExecutable, events[1].TargetKind)

	assert.Equal(t, engine.EventTargetAddSource, events[2].Kind)
	assert.Equal(t, "app", events[2].Target)
	assert.Equal(t, "main.c", events[2].Path)

	assert.Equal(t, engine.EventTargetAddSource, events[3].Kind)
	assert.Equal(t, "extra.c", events[3].Path)

	assert.True(t, ctx.Targets.Known("app"))
}

// Testable property #3: redeclaring a target name is exactly one
// Input-error diagnostic and no new TargetDeclare event.
func TestRedeclareTargetIsOneInputError(t *testing.T) {
	ctx := run(t, `
add_executable(app main.c)
add_executable(app other.c)
`)
	var declares, diags int
	for _, ev := range ctx.Events.Events() {
		switch ev.Kind {
		case engine.EventTargetDeclare:
			declares++
		case engine.EventDiagnosticEvent:
			diags++
			assert.Equal(t, engine.ClassInputError, ev.Diagnostic.Class)
		}
	}
	assert.Equal(t, 1, declares)
	assert.Equal(t, 1, diags)
}

// S3 — install(FILES ... TYPE INCLUDE) maps to destination "include", one
// InstallAddRule per file.
func TestInstallTypeMapping(t *testing.T) {
	ctx := run(t, `install(FILES a.h b.h TYPE INCLUDE)`)
	var rules []engine.Event
	for _, ev := range ctx.Events.Events() {
		if ev.Kind == engine.EventInstallAddRule {
			rules = append(rules, ev)
		}
	}
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.Equal(t, engine.InstallFile, r.InstallKind)
		assert.Equal(t, "include", r.Destination)
	}
	assert.ElementsMatch(t, []string{"a.h", "b.h"}, []string{rules[0].Path, rules[1].Path})
}

// S5 — genex preservation: a property value containing a generator
// expression (with an embedded semicolon) is copied byte-for-byte onto the
// emitted TargetPropSet event.
func TestGenexPreservedVerbatimOnPropSet(t *testing.T) {
	ctx := run(t, `
add_executable(t main.c)
set_target_properties(t PROPERTIES MY_PROP "$<$<CONFIG:Debug>:A;B>")
`)
	var found *engine.Event
	for i, ev := range ctx.Events.Events() {
		if ev.Kind == engine.EventTargetPropSet {
			found = &ctx.Events.Events()[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "t", found.Target)
	assert.Equal(t, "MY_PROP", found.Key)
	assert.Equal(t, "$<$<CONFIG:Debug>:A;B>", found.Value)
	assert.Equal(t, engine.PropSet, found.Op)
}

// S6 — policy scoping: a PUSH/SET/POP leaves the policy back at its
// version-gated default, not the value set inside the pushed scope.
func TestPolicyPushSetPopRestoresDefault(t *testing.T) {
	ctx := run(t, `
cmake_policy(PUSH)
cmake_policy(SET CMP0077 NEW)
cmake_policy(POP)
cmake_policy(GET CMP0077 X)
`)
	x := ctx.Env.Get("X")
	assert.NotEqual(t, "NEW", x)
}

// Testable property #5: policy stack depth returns to 1 once every
// PUSH/POP is balanced.
func TestPolicyStackBalanced(t *testing.T) {
	ctx := run(t, `
cmake_policy(PUSH)
cmake_policy(PUSH)
cmake_policy(POP)
cmake_policy(POP)
`)
	assert.Equal(t, 1, ctx.Policies.Depth())
}

// cmake_policy(POP) without a matching PUSH is a policy-conflict error and
// does not undeflow below depth 1.
func TestPolicyPopWithoutPushIsError(t *testing.T) {
	ctx := run(t, `cmake_policy(POP)`)
	assert.Equal(t, 1, ctx.Policies.Depth())
	assert.Equal(t, 1, ctx.Report.ErrorCount)
	assert.Equal(t, 1, ctx.Report.CountByClass[engine.ClassPolicyConflict])
}

// install(... TYPE SBIN) maps to destination "sbin", the one entry
// original_source's eval_install.c has beyond spec.md §4.8's table.
func TestInstallTypeSbinMapping(t *testing.T) {
	ctx := run(t, `install(PROGRAMS run.sh TYPE SBIN)`)
	var rule *engine.Event
	for i, ev := range ctx.Events.Events() {
		if ev.Kind == engine.EventInstallAddRule {
			rule = &ctx.Events.Events()[i]
		}
	}
	require.NotNil(t, rule)
	assert.Equal(t, "sbin", rule.Destination)
}

// S4 — file-system security: reading a path outside every allowed root
// fails closed: no variable is written and exactly one Security-Violation
// error is recorded.
func TestFileReadOutsideRootsIsSecurityViolation(t *testing.T) {
	ctx := run(t, `file(READ /etc/passwd OUT)`)
	assert.Equal(t, "", ctx.Env.Get("OUT"))
	assert.Equal(t, 1, ctx.Report.ErrorCount)

	var diag *engine.Diagnostic
	for _, ev := range ctx.Events.Events() {
		if ev.Kind == engine.EventDiagnosticEvent {
			diag = ev.Diagnostic
		}
	}
	require.NotNil(t, diag)
	assert.Equal(t, engine.SeverityError, diag.Severity)
	assert.Equal(t, "file", diag.Command)
	assert.Contains(t, diag.Cause, "Security Violation")
}

// Testable property #8: a function's set() does not leak to the caller
// without PARENT_SCOPE, but PARENT_SCOPE does propagate it.
func TestFunctionScopeIsolation(t *testing.T) {
	ctx := run(t, `
set(LEAK before)
function(f)
  set(LEAK inside)
  set(PROPAGATED yes PARENT_SCOPE)
endfunction()
f()
`)
	assert.Equal(t, "before", ctx.Env.Get("LEAK"))
	assert.Equal(t, "yes", ctx.Env.Get("PROPAGATED"))
}

// Testable property #8 (macro half): a macro's set() is textual
// substitution in the caller's own frame, so it *does* leak even without
// PARENT_SCOPE.
func TestMacroHasNoScopeIsolation(t *testing.T) {
	ctx := run(t, `
macro(m)
  set(LEAK inside)
endmacro()
m()
`)
	assert.Equal(t, "inside", ctx.Env.Get("LEAK"))
}

// Testable property #9: block(PROPAGATE X) copies X to the parent scope
// only when X was actually written inside the block's own top frame.
func TestBlockPropagateOnlyWrittenVars(t *testing.T) {
	ctx := run(t, `
set(NEVER_WRITTEN before)
block(PROPAGATE NEVER_WRITTEN WRITTEN)
  set(WRITTEN yes)
endblock()
`)
	assert.Equal(t, "before", ctx.Env.Get("NEVER_WRITTEN"))
	assert.Equal(t, "yes", ctx.Env.Get("WRITTEN"))
}

// Testable property #6: CMake-false semantics treat a "...-NOTFOUND"
// string as false in an if() condition.
func TestNotFoundSuffixIsCMakeFalse(t *testing.T) {
	ctx := run(t, `
set(X SOME-NOTFOUND)
if(X)
  set(RESULT true)
else()
  set(RESULT false)
endif()
`)
	assert.Equal(t, "false", ctx.Env.Get("RESULT"))
}

// Testable property #2: argument resolution is idempotent on tokens
// containing no $, ;, or quotes.
func TestArgResolutionIdempotentOnPlainTokens(t *testing.T) {
	ctx := run(t, `set(A plainvalue)`)
	assert.Equal(t, "plainvalue", ctx.Env.Get("A"))
}

// foreach(... IN ZIP_LISTS ...) iterates lists in parallel, binding
// <var>_<index> per list rather than flattening/concatenating them.
func TestForeachZipLists(t *testing.T) {
	ctx := run(t, `
set(NAMES "a;b;c")
set(AGES "1;2")
set(PAIRS "")
foreach(z IN ZIP_LISTS NAMES AGES)
  set(PAIRS "${PAIRS}${z_0}=${z_1};")
endforeach()
`)
	assert.Equal(t, "a=1;b=2;c=;", ctx.Env.Get("PAIRS"))
}

// break/continue inside foreach short-circuit the remaining iterations /
// the current iteration respectively.
func TestForeachBreakAndContinue(t *testing.T) {
	ctx := run(t, `
set(SEEN "")
foreach(x RANGE 1 5)
  if(${x} EQUAL 2)
    continue()
  endif()
  if(${x} EQUAL 4)
    break()
  endif()
  set(SEEN "${SEEN}${x}")
endforeach()
`)
	assert.Equal(t, "13", ctx.Env.Get("SEEN"))
}
