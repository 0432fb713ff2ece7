package engine

import (
	"path/filepath"
	"strings"
)

// handleCMakePath implements the subset of cmake_path's sub-operations
// named in spec.md §4.8, using filepath.ToSlash-normalized forward-slash
// paths throughout (the evaluator's path model, like CMake's, is
// slash-based regardless of host OS).
func handleCMakePath(ctx *Context, node *Node, args []string) error {
	if len(args) < 2 {
		ctx.Diag(inputError(ctx, node, "cmake_path", "cmake_path() requires a sub-operation and a path variable"))
		return nil
	}
	sub := strings.ToUpper(args[0])
	pathVar := args[1]
	rest := args[2:]
	raw := ctx.Env.Get(pathVar)
	p := filepath.ToSlash(raw)

	switch sub {
	case "GET":
		if len(rest) < 2 {
			return nil
		}
		component, outVar := strings.ToUpper(rest[0]), rest[1]
		ctx.Env.Set(outVar, cmakePathGet(p, component))
	case "NORMAL_PATH":
		if len(rest) < 1 {
			return nil
		}
		ctx.Env.Set(rest[0], filepath.ToSlash(filepath.Clean(p)))
	case "RELATIVE_PATH":
		if len(rest) < 2 {
			return nil
		}
		base := rest[0]
		outVar := rest[1]
		rel, err := filepath.Rel(base, p)
		if err != nil {
			ctx.Env.Set(outVar, p)
		} else {
			ctx.Env.Set(outVar, filepath.ToSlash(rel))
		}
	case "IS_ABSOLUTE":
		if len(rest) < 1 {
			return nil
		}
		ctx.Env.Set(rest[0], boolFlag(strings.HasPrefix(p, "/") || isWindowsAbsolute(p)))
	case "APPEND":
		segments := append([]string{p}, rest[:len(rest)-1]...)
		outVar := rest[len(rest)-1]
		ctx.Env.Set(outVar, filepath.ToSlash(filepath.Join(segments...)))
	case "REMOVE_FILENAME":
		ctx.Env.Set(pathVar, filepath.ToSlash(filepath.Dir(p))+"/")
	case "REMOVE_EXTENSION":
		ext := filepath.Ext(p)
		ctx.Env.Set(pathVar, strings.TrimSuffix(p, ext))
	default:
		ctx.Diag(inputError(ctx, node, "cmake_path", "unrecognized cmake_path() sub-operation "+sub))
	}
	return nil
}

func isWindowsAbsolute(p string) bool {
	return len(p) >= 2 && p[1] == ':' || strings.HasPrefix(p, "//")
}

func cmakePathGet(p, component string) string {
	switch component {
	case "ROOT_NAME":
		if isWindowsAbsolute(p) && p[1] == ':' {
			return p[:2]
		}
		return ""
	case "ROOT_DIRECTORY", "ROOT_PATH":
		if strings.HasPrefix(p, "/") {
			return "/"
		}
		return ""
	case "FILENAME":
		return filepath.Base(p)
	case "STEM":
		base := filepath.Base(p)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case "EXTENSION":
		return filepath.Ext(p)
	case "RELATIVE_PART":
		return strings.TrimPrefix(p, "/")
	case "PARENT_PATH":
		return filepath.ToSlash(filepath.Dir(p))
	default:
		return ""
	}
}
