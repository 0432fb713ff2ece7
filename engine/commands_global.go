package engine

import (
	"strings"

	"github.com/samber/lo"
)

func appendUniqueEnvList(ctx *Context, varName string, values []string) []string {
	existing := SplitSemicolonList(ctx.Env.Get(varName))
	merged := AppendUnique(existing, values...)
	ctx.Env.Set(varName, JoinSemicolonList(merged))
	return merged
}

func handleAddDefinitions(ctx *Context, node *Node, args []string) error {
	var defs, opts []string
	for _, a := range args {
		if strings.HasPrefix(a, "-D") || strings.HasPrefix(a, "/D") {
			defs = append(defs, a)
		} else {
			opts = append(opts, a)
		}
	}
	if len(defs) > 0 {
		merged := appendUniqueEnvList(ctx, "NOBIFY_GLOBAL_COMPILE_DEFINITIONS", defs)
		ctx.Events.Emit(Event{Kind: EventGlobalCompileDefinitions, Origin: originOf(ctx, node), Values: merged})
	}
	if len(opts) > 0 {
		merged := appendUniqueEnvList(ctx, "NOBIFY_GLOBAL_COMPILE_OPTIONS", opts)
		ctx.Events.Emit(Event{Kind: EventGlobalCompileOptions, Origin: originOf(ctx, node), Values: merged})
	}
	return nil
}

func handleAddCompileOptions(ctx *Context, node *Node, args []string) error {
	merged := appendUniqueEnvList(ctx, "NOBIFY_GLOBAL_COMPILE_OPTIONS", args)
	ctx.Events.Emit(Event{Kind: EventGlobalCompileOptions, Origin: originOf(ctx, node), Values: merged})
	return nil
}

func handleAddLinkOptions(ctx *Context, node *Node, args []string) error {
	expanded := expandLinkOptionTokens(args)
	merged := appendUniqueEnvList(ctx, "NOBIFY_GLOBAL_LINK_OPTIONS", expanded)
	ctx.Events.Emit(Event{Kind: EventGlobalLinkOptions, Origin: originOf(ctx, node), Values: merged})
	return nil
}

func handleLinkLibraries(ctx *Context, node *Node, args []string) error {
	merged := appendUniqueEnvList(ctx, "NOBIFY_GLOBAL_LINK_LIBRARIES", stripScopeKeywords(args))
	ctx.Events.Emit(Event{Kind: EventGlobalLinkLibraries, Origin: originOf(ctx, node), Values: merged})
	return nil
}

func handleLinkDirectories(ctx *Context, node *Node, args []string) error {
	dirs := resolveRelativeToCurrentSource(ctx, lo.Filter(args, func(a string, _ int) bool {
		return !strings.EqualFold(a, "BEFORE") && !strings.EqualFold(a, "AFTER")
	}))
	merged := appendUniqueEnvList(ctx, "NOBIFY_DIRECTORY_LINK_DIRECTORIES", dirs)
	ctx.Events.Emit(Event{Kind: EventDirectoryLinkDirectories, Origin: originOf(ctx, node), Values: merged})
	return nil
}

func handleIncludeDirectories(ctx *Context, node *Node, args []string) error {
	filtered := lo.Filter(args, func(a string, _ int) bool {
		u := strings.ToUpper(a)
		return u != "SYSTEM" && u != "BEFORE" && u != "AFTER"
	})
	dirs := resolveRelativeToCurrentSource(ctx, filtered)
	merged := appendUniqueEnvList(ctx, "NOBIFY_DIRECTORY_INCLUDE_DIRECTORIES", dirs)
	ctx.Events.Emit(Event{Kind: EventDirectoryIncludeDirectories, Origin: originOf(ctx, node), Values: merged})
	return nil
}

func handleEnableTesting(ctx *Context, node *Node, args []string) error {
	ctx.Env.Set("NOBIFY_TESTING_ENABLED", "1")
	return nil
}
