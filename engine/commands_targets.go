package engine

import (
	"strings"

	"github.com/samber/lo"
)

func handleAddExecutable(ctx *Context, node *Node, args []string) error {
	return addTarget(ctx, node, args, TargetExecutable)
}

func handleAddLibrary(ctx *Context, node *Node, args []string) error {
	return addTarget(ctx, node, args, TargetUnknown)
}

func addTarget(ctx *Context, node *Node, args []string, kindHint TargetKind) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "add_executable", "missing target name"))
		return nil
	}
	name := args[0]
	rest := args[1:]

	if idx := indexOfFold(rest, "ALIAS"); idx >= 0 && idx+1 < len(rest) {
		referent := rest[idx+1]
		if !ctx.Targets.RegisterAlias(name, referent) {
			ctx.Diag(inputError(ctx, node, "add_library", "invalid ALIAS target declaration for "+name))
		}
		return nil
	}

	imported := hasFlag(rest, "IMPORTED")
	var sources []string
	kind := kindHint
	for _, tok := range rest {
		switch strings.ToUpper(tok) {
		case "STATIC":
			kind = TargetStatic
		case "SHARED":
			kind = TargetShared
		case "MODULE":
			kind = TargetModule
		case "OBJECT":
			kind = TargetObject
		case "INTERFACE":
			kind = TargetInterface
		case "UNKNOWN":
			kind = TargetUnknown
		case "IMPORTED", "GLOBAL", "WIN32", "MACOSX_BUNDLE", "EXCLUDE_FROM_ALL":
			// handled as flags / property events below, not a source.
		default:
			if !imported {
				sources = append(sources, tok)
			}
		}
	}
	if kindHint == TargetUnknown && kind == TargetUnknown && !imported {
		if IsCMakeTrue(ctx.Env.Get("BUILD_SHARED_LIBS")) {
			kind = TargetShared
		} else {
			kind = TargetStatic
		}
	}
	if imported {
		kind = TargetCustom
	}

	if !ctx.Targets.Register(name, kind) {
		ctx.Diag(inputError(ctx, node, "add_executable", "target "+name+" already exists"))
		return nil
	}
	ctx.Events.Emit(Event{Kind: EventTargetDeclare, Origin: originOf(ctx, node), Target: name, TargetKind: kind})

	for _, flag := range []string{"WIN32", "MACOSX_BUNDLE", "EXCLUDE_FROM_ALL"} {
		if hasFlag(rest, flag) {
			ctx.Events.Emit(Event{Kind: EventTargetPropSet, Origin: originOf(ctx, node), Target: name, Key: flag, Value: "1", Op: PropSet})
		}
	}
	for _, src := range sources {
		ctx.Events.Emit(Event{Kind: EventTargetAddSource, Origin: originOf(ctx, node), Target: name, Path: src})
	}

	for _, def := range SplitSemicolonList(ctx.Env.Get("NOBIFY_GLOBAL_COMPILE_DEFINITIONS")) {
		if def != "" {
			ctx.Events.Emit(Event{Kind: EventTargetCompileDefinitions, Origin: originOf(ctx, node), Target: name, Values: []string{def}})
		}
	}
	for _, opt := range SplitSemicolonList(ctx.Env.Get("NOBIFY_GLOBAL_COMPILE_OPTIONS")) {
		if opt != "" {
			ctx.Events.Emit(Event{Kind: EventTargetCompileOptions, Origin: originOf(ctx, node), Target: name, Values: []string{opt}})
		}
	}
	return nil
}

func indexOfFold(s []string, v string) int {
	for i, x := range s {
		if strings.EqualFold(x, v) {
			return i
		}
	}
	return -1
}

func handleTargetSources(ctx *Context, node *Node, args []string) error {
	if len(args) < 1 {
		ctx.Diag(inputError(ctx, node, "target_sources", "target_sources() requires a target"))
		return nil
	}
	target := args[0]
	if !ctx.Targets.Known(target) {
		ctx.Diag(inputError(ctx, node, "target_sources", "unknown target "+target))
		return nil
	}
	for _, src := range stripScopeKeywords(args[1:]) {
		ctx.Events.Emit(Event{Kind: EventTargetAddSource, Origin: originOf(ctx, node), Target: target, Path: src})
	}
	return nil
}

func stripScopeKeywords(args []string) []string {
	var out []string
	for _, a := range args {
		switch strings.ToUpper(a) {
		case "PUBLIC", "PRIVATE", "INTERFACE", "BEFORE", "SYSTEM":
			continue
		}
		out = append(out, a)
	}
	return out
}

func handleTargetIncludeDirectories(ctx *Context, node *Node, args []string) error {
	if len(args) < 1 {
		ctx.Diag(inputError(ctx, node, "target_include_directories", "missing target"))
		return nil
	}
	target := args[0]
	if !ctx.Targets.Known(target) {
		ctx.Diag(inputError(ctx, node, "target_include_directories", "unknown target "+target))
		return nil
	}
	dirs := resolveRelativeToCurrentSource(ctx, stripScopeKeywords(args[1:]))
	ctx.Events.Emit(Event{Kind: EventTargetIncludeDirectories, Origin: originOf(ctx, node), Target: target, Values: dirs})
	return nil
}

func resolveRelativeToCurrentSource(ctx *Context, dirs []string) []string {
	base := ctx.Env.Get("CMAKE_CURRENT_SOURCE_DIR")
	var out []string
	for _, d := range dirs {
		if ContainsGenex(d) || strings.HasPrefix(d, "/") {
			out = append(out, d)
			continue
		}
		out = append(out, joinPath(base, d))
	}
	return out
}

func joinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}

func handleTargetCompileDefinitions(ctx *Context, node *Node, args []string) error {
	return emitTargetValues(ctx, node, args, "target_compile_definitions", EventTargetCompileDefinitions)
}

func handleTargetCompileOptions(ctx *Context, node *Node, args []string) error {
	return emitTargetValues(ctx, node, args, "target_compile_options", EventTargetCompileOptions)
}

func handleTargetLinkLibraries(ctx *Context, node *Node, args []string) error {
	return emitTargetValues(ctx, node, args, "target_link_libraries", EventTargetLinkLibraries)
}

func handleTargetLinkOptions(ctx *Context, node *Node, args []string) error {
	if len(args) < 1 {
		ctx.Diag(inputError(ctx, node, "target_link_options", "missing target"))
		return nil
	}
	target := args[0]
	if !ctx.Targets.Known(target) {
		ctx.Diag(inputError(ctx, node, "target_link_options", "unknown target "+target))
		return nil
	}
	values := expandLinkOptionTokens(stripScopeKeywords(args[1:]))
	ctx.Events.Emit(Event{Kind: EventTargetLinkOptions, Origin: originOf(ctx, node), Target: target, Values: values})
	return nil
}

func emitTargetValues(ctx *Context, node *Node, args []string, name string, kind EventKind) error {
	if len(args) < 1 {
		ctx.Diag(inputError(ctx, node, name, "missing target"))
		return nil
	}
	target := args[0]
	if !ctx.Targets.Known(target) {
		ctx.Diag(inputError(ctx, node, name, "unknown target "+target))
		return nil
	}
	values := stripScopeKeywords(args[1:])
	ctx.Events.Emit(Event{Kind: kind, Origin: originOf(ctx, node), Target: target, Values: values})
	return nil
}

func handleSetTargetProperties(ctx *Context, node *Node, args []string) error {
	if len(args) < 1 {
		ctx.Diag(inputError(ctx, node, "set_target_properties", "missing target list"))
		return nil
	}
	idx := indexOfFold(args, "PROPERTIES")
	if idx < 0 {
		ctx.Diag(inputError(ctx, node, "set_target_properties", "missing PROPERTIES keyword"))
		return nil
	}
	targets := args[:idx]
	kvs := args[idx+1:]
	for t := 0; t+1 < len(kvs); t += 2 {
		key, value := kvs[t], kvs[t+1]
		for _, target := range targets {
			if !ctx.Targets.Known(target) {
				ctx.Diag(inputError(ctx, node, "set_target_properties", "unknown target "+target))
				continue
			}
			ctx.SetTargetProperty(target, key, value)
			ctx.Events.Emit(Event{Kind: EventTargetPropSet, Origin: originOf(ctx, node), Target: target, Key: key, Value: value, Op: PropSet})
		}
	}
	return nil
}

func handleSetProperty(ctx *Context, node *Node, args []string) error {
	if len(args) < 1 || !strings.EqualFold(args[0], "TARGET") {
		ctx.Diag(&Diagnostic{
			Severity: SeverityError, Component: "handler", Command: "set_property", Origin: originOf(ctx, node),
			Cause: "only set_property(TARGET ...) is implemented", Class: ClassEngineLimitation, Code: "E-PARTIAL",
		})
		return nil
	}
	rest := args[1:]
	propIdx := indexOfFold(rest, "PROPERTY")
	if propIdx < 0 || propIdx+1 >= len(rest) {
		ctx.Diag(inputError(ctx, node, "set_property", "missing PROPERTY keyword"))
		return nil
	}
	targets := rest[:propIdx]
	op := PropSet
	valueStart := propIdx + 2
	if indexOfFold(rest, "APPEND_STRING") >= 0 {
		op = PropAppendString
	} else if indexOfFold(rest, "APPEND") >= 0 {
		op = PropAppendList
	}
	key := rest[propIdx+1]
	values := rest[valueStart:]
	value := JoinSemicolonList(values)
	for _, target := range targets {
		if !ctx.Targets.Known(target) {
			ctx.Diag(inputError(ctx, node, "set_property", "unknown target "+target))
			continue
		}
		ctx.SetTargetProperty(target, key, value)
		ctx.Events.Emit(Event{Kind: EventTargetPropSet, Origin: originOf(ctx, node), Target: target, Key: key, Value: value, Op: op})
	}
	return nil
}

// expandLinkOptionTokens expands SHELL:/LINKER: prefixed tokens with nested
// comma/shell splitting (spec.md §4.8's add_link_options contract).
func expandLinkOptionTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		switch {
		case strings.HasPrefix(t, "SHELL:"):
			out = append(out, strings.Fields(strings.TrimPrefix(t, "SHELL:"))...)
		case strings.HasPrefix(t, "LINKER:"):
			for _, part := range strings.Split(strings.TrimPrefix(t, "LINKER:"), ",") {
				out = append(out, "-Wl,"+part)
			}
		default:
			out = append(out, t)
		}
	}
	return lo.Uniq(out)
}
