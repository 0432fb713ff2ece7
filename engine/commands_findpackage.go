package engine

import (
	"os"
	"path/filepath"
)

func handleFindPackage(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "find_package", "find_package() requires a name"))
		return nil
	}
	name := args[0]
	rest := args[1:]

	required := hasFlag(rest, "REQUIRED")
	quiet := hasFlag(rest, "QUIET")
	mode := "MODULE"
	if hasFlag(rest, "CONFIG") {
		mode = "CONFIG"
	}

	ctx.Env.Set(name+"_FIND_REQUIRED", boolFlag(required))
	ctx.Env.Set(name+"_FIND_QUIETLY", boolFlag(quiet))

	found := false
	version := ""

	if mode == "MODULE" {
		for _, dir := range SplitSemicolonList(ctx.Env.Get("CMAKE_MODULE_PATH")) {
			candidate := filepath.Join(dir, "Find"+name+".cmake")
			if nodes, err := ctx.loadModuleScript(candidate); err == nil {
				if err := RunBlock(ctx, nodes); err != nil {
					return err
				}
				found = IsCMakeTrue(ctx.Env.Get(name + "_FOUND"))
				break
			}
		}
	} else {
		for _, dir := range SplitSemicolonList(ctx.Env.Get("CMAKE_PREFIX_PATH")) {
			configPath := filepath.Join(dir, name+"Config.cmake")
			if nodes, err := ctx.loadModuleScript(configPath); err == nil {
				versionPath := filepath.Join(dir, name+"ConfigVersion.cmake")
				if vnodes, verr := ctx.loadModuleScript(versionPath); verr == nil {
					if err := RunBlock(ctx, vnodes); err != nil {
						return err
					}
					version = ctx.Env.Get("PACKAGE_VERSION")
					if !IsCMakeTrue(ctx.Env.Get("PACKAGE_VERSION_COMPATIBLE")) {
						continue
					}
				}
				if err := RunBlock(ctx, nodes); err != nil {
					return err
				}
				found = true
				break
			}
		}
	}

	ctx.Env.Set(name+"_FOUND", boolFlag(found))
	ctx.Events.Emit(Event{
		Kind: EventFindPackage, Origin: originOf(ctx, node),
		PackageName: name, PackageVersion: version, Found: found,
	})

	if required && !found {
		ctx.Fatal(&Diagnostic{
			Component: "handler", Command: "find_package", Origin: originOf(ctx, node),
			Cause: "required package " + name + " not found", Class: ClassIoEnvError, Code: "E-FIND-PACKAGE",
		})
	}
	return nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return ""
}

// loadModuleScript reads and block-structures a Find<Name>.cmake /
// <Name>Config.cmake module via the injected Loader, treating a missing
// Loader the same as a not-found file.
func (ctx *Context) loadModuleScript(path string) ([]Node, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if ctx.Loader == nil {
		return nil, os.ErrNotExist
	}
	return ctx.Loader(path)
}
