package engine

import "strings"

func handleAddTest(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "add_test", "add_test() requires a name or NAME keyword"))
		return nil
	}
	var name string
	var command []string
	if strings.EqualFold(args[0], "NAME") && len(args) > 1 {
		name = args[1]
		rest := args[2:]
		if idx := indexOfFold(rest, "COMMAND"); idx >= 0 {
			command = rest[idx+1:]
		}
	} else {
		name = args[0]
		command = args[1:]
	}
	ctx.Events.Emit(Event{Kind: EventAddTest, Origin: originOf(ctx, node), Name: name, Values: command})
	return nil
}

func handleAddCustomCommand(ctx *Context, node *Node, args []string) error {
	outputIdx := indexOfFold(args, "OUTPUT")
	targetIdx := indexOfFold(args, "TARGET")
	commandIdx := indexOfFold(args, "COMMAND")
	if commandIdx < 0 {
		ctx.Diag(inputError(ctx, node, "add_custom_command", "add_custom_command() requires COMMAND"))
		return nil
	}
	ev := Event{Kind: EventAddCustomCommand, Origin: originOf(ctx, node), Values: args[commandIdx+1:]}
	switch {
	case outputIdx >= 0 && outputIdx+1 < commandIdx:
		ev.Path = args[outputIdx+1]
	case targetIdx >= 0 && targetIdx+1 < commandIdx:
		ev.Target = args[targetIdx+1]
	default:
		ctx.Diag(&Diagnostic{
			Severity: SeverityWarning, Component: "handler", Command: "add_custom_command", Origin: originOf(ctx, node),
			Cause: "add_custom_command() without OUTPUT or TARGET is only partially supported", Class: ClassEngineLimitation, Code: "W-PARTIAL",
		})
	}
	ctx.Events.Emit(ev)
	return nil
}

func handleAddCustomTarget(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "add_custom_target", "add_custom_target() requires a name"))
		return nil
	}
	name := args[0]
	if !ctx.Targets.Register(name, TargetCustom) {
		ctx.Diag(inputError(ctx, node, "add_custom_target", "target "+name+" already exists"))
		return nil
	}
	var command []string
	if idx := indexOfFold(args, "COMMAND"); idx >= 0 {
		command = args[idx+1:]
	}
	ctx.Events.Emit(Event{Kind: EventAddCustomTarget, Origin: originOf(ctx, node), Target: name, Values: command})
	return nil
}

func handleTryCompile(ctx *Context, node *Node, args []string) error {
	if len(args) < 1 {
		ctx.Diag(inputError(ctx, node, "try_compile", "try_compile() requires a result variable"))
		return nil
	}
	// Probing the host toolchain is an excluded collaborator (spec.md §1);
	// the evaluator sets the result variable to success without invoking a
	// real compiler, and emits no event.
	ctx.Env.Set(args[0], "1")
	return nil
}
