package engine

import "strings"

func handleProject(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "project", "project() requires a name"))
		return nil
	}
	name := args[0]
	rest := args[1:]

	version, description := "", ""
	var languages []string
	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(rest[i]) {
		case "VERSION":
			if i+1 < len(rest) {
				i++
				version = rest[i]
			}
		case "DESCRIPTION":
			if i+1 < len(rest) {
				i++
				description = rest[i]
			}
		case "LANGUAGES":
			languages = append(languages, rest[i+1:]...)
			i = len(rest)
		case "HOMEPAGE_URL":
			if i+1 < len(rest) {
				i++
			}
		}
	}

	ctx.Env.Set("PROJECT_NAME", name)
	ctx.Env.Set("PROJECT_VERSION", version)
	ctx.Env.Set("PROJECT_DESCRIPTION", description)
	sourceDir := ctx.Env.Get("CMAKE_CURRENT_SOURCE_DIR")
	binaryDir := ctx.Env.Get("CMAKE_CURRENT_BINARY_DIR")
	ctx.Env.Set("PROJECT_SOURCE_DIR", sourceDir)
	ctx.Env.Set("PROJECT_BINARY_DIR", binaryDir)
	ctx.Env.Set(name+"_VERSION", version)
	ctx.Env.Set(name+"_SOURCE_DIR", sourceDir)
	ctx.Env.Set(name+"_BINARY_DIR", binaryDir)
	ctx.Env.Set(name+"_DESCRIPTION", description)
	if !ctx.Env.Defined("CMAKE_PROJECT_NAME") {
		ctx.Env.Set("CMAKE_PROJECT_NAME", name)
		ctx.Env.Set("CMAKE_PROJECT_VERSION", version)
		ctx.Env.Set("CMAKE_PROJECT_DESCRIPTION", description)
	}

	ctx.Events.Emit(Event{Kind: EventProjectDeclare, Origin: originOf(ctx, node), Name: name, Values: languages})
	return nil
}

func handleAddSubdirectory(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "add_subdirectory", "add_subdirectory() requires a source directory"))
		return nil
	}
	srcRel := args[0]
	binRel := srcRel
	if len(args) > 1 && !strings.EqualFold(args[1], "EXCLUDE_FROM_ALL") {
		binRel = args[1]
	}

	parentSrc := ctx.Env.Get("CMAKE_CURRENT_SOURCE_DIR")
	parentBin := ctx.Env.Get("CMAKE_CURRENT_BINARY_DIR")
	newSrc := joinPath(parentSrc, srcRel)
	newBin := joinPath(parentBin, binRel)

	if ctx.Loader == nil {
		ctx.Diag(&Diagnostic{
			Severity: SeverityError, Component: "handler", Command: "add_subdirectory", Origin: originOf(ctx, node),
			Cause: "no source loader configured", Class: ClassEngineLimitation, Code: "E-NO-LOADER",
		})
		return nil
	}
	nodes, err := ctx.Loader(newSrc)
	if err != nil {
		ctx.Diag(&Diagnostic{
			Severity: SeverityError, Component: "handler", Command: "add_subdirectory", Origin: originOf(ctx, node),
			Cause: err.Error(), Class: ClassIoEnvError, Code: "E-SUBDIR-READ",
		})
		return nil
	}

	ctx.Env.PushScope()
	ctx.Env.Set("CMAKE_CURRENT_SOURCE_DIR", newSrc)
	ctx.Env.Set("CMAKE_CURRENT_BINARY_DIR", newBin)
	err = RunBlock(ctx, nodes)
	ctx.Env.PopScope()
	return err
}

func handleInclude(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "include", "include() requires a file"))
		return nil
	}
	if ctx.Loader == nil {
		ctx.Diag(&Diagnostic{
			Severity: SeverityError, Component: "handler", Command: "include", Origin: originOf(ctx, node),
			Cause: "no source loader configured", Class: ClassEngineLimitation, Code: "E-NO-LOADER",
		})
		return nil
	}
	path := args[0]
	if !strings.HasSuffix(path, ".cmake") {
		path = joinPath(ctx.Env.Get("CMAKE_CURRENT_SOURCE_DIR"), path)
	}
	nodes, err := ctx.Loader(path)
	if err != nil {
		if hasFlag(args, "OPTIONAL") {
			return nil
		}
		ctx.Diag(&Diagnostic{
			Severity: SeverityError, Component: "handler", Command: "include", Origin: originOf(ctx, node),
			Cause: err.Error(), Class: ClassIoEnvError, Code: "E-INCLUDE-READ",
		})
		return nil
	}
	return RunBlock(ctx, nodes)
}

func handleIncludeGuard(ctx *Context, node *Node, args []string) error {
	key := "NOBIFY_INCLUDE_GUARD_" + ctx.Env.Get("CMAKE_CURRENT_SOURCE_DIR")
	if ctx.Env.Defined(key) {
		ctx.ReturnRequested = true
		return nil
	}
	ctx.Env.Set(key, "1")
	return nil
}
