package engine

import (
	"strings"
)

// ImplLevel is the dispatcher's declared fidelity for one command.
type ImplLevel int

const (
	ImplFull ImplLevel = iota
	ImplPartial
	ImplMissing
)

// Fallback is what the dispatcher does for a command it cannot (fully)
// implement.
type Fallback int

const (
	FallbackNoopWarn Fallback = iota
	FallbackErrorContinue
)

// CapabilityEntry is one row of the fixed, closed capability registry
// (spec.md §2 row 9, §6 "Capability registry"). Grounded verbatim on
// original_source/src_v2/evaluator/eval_command_caps.c's COMMAND_CAPS table.
type CapabilityEntry struct {
	Name     string
	Level    ImplLevel
	Fallback Fallback
}

// Handler executes one command invocation against ctx with its already
// block-structured body (for block-taking commands) available on node.
type Handler func(ctx *Context, node *Node, args []string) error

var commandCapabilities = []CapabilityEntry{
	{"add_compile_options", ImplFull, FallbackNoopWarn},
	{"add_custom_command", ImplPartial, FallbackErrorContinue},
	{"add_custom_target", ImplFull, FallbackNoopWarn},
	{"add_definitions", ImplFull, FallbackNoopWarn},
	{"add_executable", ImplFull, FallbackNoopWarn},
	{"add_library", ImplFull, FallbackNoopWarn},
	{"add_link_options", ImplFull, FallbackNoopWarn},
	{"add_subdirectory", ImplFull, FallbackNoopWarn},
	{"add_test", ImplPartial, FallbackErrorContinue},
	{"block", ImplFull, FallbackNoopWarn},
	{"break", ImplFull, FallbackNoopWarn},
	{"cmake_minimum_required", ImplFull, FallbackNoopWarn},
	{"cmake_path", ImplPartial, FallbackErrorContinue},
	{"cmake_policy", ImplFull, FallbackNoopWarn},
	{"continue", ImplFull, FallbackNoopWarn},
	{"cpack_add_component", ImplFull, FallbackNoopWarn},
	{"cpack_add_component_group", ImplFull, FallbackNoopWarn},
	{"cpack_add_install_type", ImplFull, FallbackNoopWarn},
	{"enable_testing", ImplFull, FallbackNoopWarn},
	{"endblock", ImplFull, FallbackNoopWarn},
	{"file", ImplPartial, FallbackErrorContinue},
	{"find_package", ImplPartial, FallbackErrorContinue},
	{"include", ImplPartial, FallbackErrorContinue},
	{"include_directories", ImplFull, FallbackNoopWarn},
	{"include_guard", ImplFull, FallbackNoopWarn},
	{"install", ImplFull, FallbackNoopWarn},
	{"link_directories", ImplFull, FallbackNoopWarn},
	{"link_libraries", ImplFull, FallbackNoopWarn},
	{"list", ImplFull, FallbackNoopWarn},
	{"math", ImplFull, FallbackNoopWarn},
	{"message", ImplFull, FallbackNoopWarn},
	{"project", ImplFull, FallbackNoopWarn},
	{"return", ImplFull, FallbackNoopWarn},
	{"set", ImplFull, FallbackNoopWarn},
	{"set_property", ImplPartial, FallbackErrorContinue},
	{"set_target_properties", ImplFull, FallbackNoopWarn},
	{"string", ImplFull, FallbackNoopWarn},
	{"target_compile_definitions", ImplFull, FallbackNoopWarn},
	{"target_compile_options", ImplFull, FallbackNoopWarn},
	{"target_include_directories", ImplFull, FallbackNoopWarn},
	{"target_link_directories", ImplFull, FallbackNoopWarn},
	{"target_link_libraries", ImplFull, FallbackNoopWarn},
	{"target_link_options", ImplFull, FallbackNoopWarn},
	{"try_compile", ImplFull, FallbackNoopWarn},
	{"unset", ImplFull, FallbackNoopWarn},
}

var capabilityIndex = func() map[string]CapabilityEntry {
	m := make(map[string]CapabilityEntry, len(commandCapabilities))
	for _, c := range commandCapabilities {
		m[c.Name] = c
	}
	return m
}()

// LookupCapability finds name's registry row, case-insensitively. A missing
// row is reported with ok=false and an ImplMissing/FallbackNoopWarn entry
// (spec.md §4.5).
func LookupCapability(name string) (CapabilityEntry, bool) {
	entry, ok := capabilityIndex[strings.ToLower(name)]
	if !ok {
		return CapabilityEntry{Name: name, Level: ImplMissing, Fallback: FallbackNoopWarn}, false
	}
	return entry, true
}

// handlerTable maps lower-cased command names to their Go implementation.
// Commands present in commandCapabilities but absent here (block and
// endblock, which the flow controller runs as structured nodes, and
// target_link_directories) are accepted by Dispatch without effect and
// without a diagnostic; commands in neither table fall through to the
// missing-command fallback.
var handlerTable map[string]Handler

func init() {
	handlerTable = map[string]Handler{
		"set":                         handleSet,
		"unset":                       handleUnset,
		"project":                     handleProject,
		"add_executable":              handleAddExecutable,
		"add_library":                 handleAddLibrary,
		"add_definitions":             handleAddDefinitions,
		"add_compile_options":         handleAddCompileOptions,
		"add_link_options":            handleAddLinkOptions,
		"link_libraries":              handleLinkLibraries,
		"link_directories":            handleLinkDirectories,
		"include_directories":         handleIncludeDirectories,
		"target_sources":              handleTargetSources,
		"target_include_directories":  handleTargetIncludeDirectories,
		"target_compile_definitions":  handleTargetCompileDefinitions,
		"target_compile_options":      handleTargetCompileOptions,
		"target_link_libraries":       handleTargetLinkLibraries,
		"target_link_options":         handleTargetLinkOptions,
		"set_target_properties":       handleSetTargetProperties,
		"set_property":                handleSetProperty,
		"install":                     handleInstall,
		"file":                        handleFile,
		"find_package":                handleFindPackage,
		"message":                     handleMessage,
		"include":                     handleInclude,
		"add_subdirectory":            handleAddSubdirectory,
		"list":                        handleList,
		"string":                      handleString,
		"math":                        handleMath,
		"cmake_path":                  handleCMakePath,
		"cmake_policy":                handleCMakePolicy,
		"cmake_minimum_required":      handleCMakeMinimumRequired,
		"add_test":                    handleAddTest,
		"add_custom_command":          handleAddCustomCommand,
		"add_custom_target":           handleAddCustomTarget,
		"enable_testing":              handleEnableTesting,
		"cpack_add_component":         handleCPackAddComponent,
		"cpack_add_component_group":   handleCPackAddComponentGroup,
		"cpack_add_install_type":      handleCPackAddInstallType,
		"include_guard":               handleIncludeGuard,
		"try_compile":                 handleTryCompile,
		"function":                    handleFunctionDef,
		"macro":                       handleMacroDef,
		"break":                       handleBreak,
		"continue":                    handleContinue,
		"return":                      handleReturn,
		"option":                      handleOption,
	}
}

// Dispatch resolves and invokes the handler for one Node. It resolves args,
// captures the Origin, and short-circuits per spec.md §4.5 before doing any
// command-specific work.
func Dispatch(ctx *Context, node *Node) error {
	if ctx.ShouldShortCircuit() {
		return nil
	}
	cmd := node.Command
	name := strings.ToLower(cmd.Name)
	origin := Origin{Line: cmd.Pos.Line, CommandName: cmd.Name}
	if v := ctx.Env.Get("CMAKE_CURRENT_SOURCE_DIR"); v != "" {
		origin.File = v
	}

	entry, known := LookupCapability(name)
	handler, hasHandler := handlerTable[name]
	if !known && !hasHandler {
		if entry.Fallback == FallbackErrorContinue {
			ctx.Diag(&Diagnostic{
				Severity: SeverityError, Component: "dispatcher", Command: cmd.Name, Origin: origin,
				Cause: "unknown command", Class: ClassEngineLimitation, Code: "E-UNKNOWN-CMD",
			})
		} else {
			ctx.Diag(&Diagnostic{
				Severity: SeverityWarning, Component: "dispatcher", Command: cmd.Name, Origin: origin,
				Cause: "unknown command, ignored", Class: ClassEngineLimitation, Code: "W-UNKNOWN-CMD",
			})
		}
		return nil
	}
	if !hasHandler {
		if entry.Level == ImplMissing {
			if entry.Fallback == FallbackErrorContinue {
				ctx.Diag(&Diagnostic{
					Severity: SeverityError, Component: "dispatcher", Command: cmd.Name, Origin: origin,
					Cause: "command not implemented", Class: ClassEngineLimitation, Code: "E-NOT-IMPL",
				})
			} else {
				ctx.Diag(&Diagnostic{
					Severity: SeverityWarning, Component: "dispatcher", Command: cmd.Name, Origin: origin,
					Cause: "command not implemented, ignored", Class: ClassEngineLimitation, Code: "W-NOT-IMPL",
				})
			}
		}
		return nil
	}

	args := ResolveArguments(&cmd.Arguments, ctx.Env, ctx.Macros.Top())
	if err := handler(ctx, node, args); err != nil {
		return err
	}
	return nil
}
