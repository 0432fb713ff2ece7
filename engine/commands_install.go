package engine

import "strings"

var installTypeDestinations = map[string]string{
	"BIN":         "bin",
	"SBIN":        "sbin",
	"LIB":         "lib",
	"INCLUDE":     "include",
	"SYSCONF":     "etc",
	"SHAREDSTATE": "com",
	"LOCALSTATE":  "var",
	"RUNSTATE":    "var/run",
	"DATA":        "share",
	"INFO":        "share/info",
	"LOCALE":      "share/locale",
	"MAN":         "share/man",
	"DOC":         "share/doc",
}

func handleInstall(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "install", "install() requires a signature keyword"))
		return nil
	}
	switch strings.ToUpper(args[0]) {
	case "TARGETS":
		return installTargets(ctx, node, args[1:])
	case "FILES":
		return installFilesLike(ctx, node, args[1:], InstallFile)
	case "PROGRAMS":
		return installFilesLike(ctx, node, args[1:], InstallProgram)
	case "DIRECTORY":
		return installFilesLike(ctx, node, args[1:], InstallDirectory)
	case "SCRIPT", "CODE":
		ctx.Diag(&Diagnostic{
			Severity: SeverityWarning, Component: "handler", Command: "install", Origin: originOf(ctx, node),
			Cause: "install(" + args[0] + " ...) is a generator-time action, not evaluated here", Class: ClassEngineLimitation, Code: "W-PARTIAL",
		})
		return nil
	case "EXPORT", "EXPORT_ANDROID_MK", "RUNTIME_DEPENDENCY_SET", "IMPORTED_RUNTIME_ARTIFACTS":
		ctx.Diag(&Diagnostic{
			Severity: SeverityWarning, Component: "handler", Command: "install", Origin: originOf(ctx, node),
			Cause: "install(" + args[0] + " ...) signature not implemented", Class: ClassEngineLimitation, Code: "W-PARTIAL",
		})
		return nil
	default:
		ctx.Diag(inputError(ctx, node, "install", "unrecognized install() signature "+args[0]))
		return nil
	}
}

func installTargets(ctx *Context, node *Node, rest []string) error {
	destination := ""
	var items []string
	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(rest[i]) {
		case "RUNTIME", "LIBRARY", "ARCHIVE", "PUBLIC_HEADER", "PRIVATE_HEADER", "FRAMEWORK", "RESOURCE",
			"COMPONENT", "OPTIONAL", "NAMELINK_ONLY", "NAMELINK_SKIP", "EXCLUDE_FROM_ALL":
			// consumed, not a target name.
		case "DESTINATION":
			if i+1 < len(rest) {
				i++
				destination = rest[i]
			}
		default:
			items = append(items, rest[i])
		}
	}
	for _, item := range items {
		if !ctx.Targets.Known(item) {
			continue
		}
		ctx.Events.Emit(Event{
			Kind: EventInstallAddRule, Origin: originOf(ctx, node),
			InstallKind: InstallTarget, Target: item, Destination: destination,
		})
	}
	return nil
}

func installFilesLike(ctx *Context, node *Node, rest []string, kind InstallKind) error {
	destination := ""
	typeTok := ""
	var items []string
	for i := 0; i < len(rest); i++ {
		switch strings.ToUpper(rest[i]) {
		case "DESTINATION":
			if i+1 < len(rest) {
				i++
				destination = rest[i]
			}
		case "TYPE":
			if i+1 < len(rest) {
				i++
				typeTok = strings.ToUpper(rest[i])
			}
		case "COMPONENT", "OPTIONAL", "RENAME", "PERMISSIONS":
			if i+1 < len(rest) {
				i++
			}
		default:
			items = append(items, rest[i])
		}
	}
	if destination == "" && typeTok != "" {
		destination = installTypeDestinations[typeTok]
	}
	for _, item := range items {
		ctx.Events.Emit(Event{
			Kind: EventInstallAddRule, Origin: originOf(ctx, node),
			InstallKind: kind, Path: item, Destination: destination,
		})
	}
	return nil
}
