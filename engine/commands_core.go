package engine

import (
	"strings"
)

func handleSet(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "set", "set() requires a variable name"))
		return nil
	}
	name := args[0]
	rest := args[1:]

	parentScope := false
	cacheIdx := -1
	for i, a := range rest {
		switch a {
		case "PARENT_SCOPE":
			parentScope = true
			rest = removeAt(rest, i)
		case "CACHE":
			cacheIdx = i
		}
		if cacheIdx >= 0 {
			break
		}
	}

	if cacheIdx >= 0 {
		values := rest[:cacheIdx]
		cacheArgs := rest[cacheIdx+1:]
		cacheType := ""
		doc := ""
		force := false
		for i := 0; i < len(cacheArgs); i++ {
			switch cacheArgs[i] {
			case "FORCE":
				force = true
			default:
				if cacheType == "" {
					cacheType = cacheArgs[i]
				} else if doc == "" {
					doc = cacheArgs[i]
				}
			}
		}
		value := JoinSemicolonList(values)
		if force || !ctx.Env.DefinedCache(name) {
			ctx.Env.SetCache(name, value)
		}
		ctx.Events.Emit(Event{
			Kind: EventSetCacheEntry, Origin: originOf(ctx, node),
			Key: name, Value: ctx.Env.GetCache(name), CacheType: cacheType, Values: []string{doc},
		})
		return nil
	}

	value := JoinSemicolonList(rest)
	if parentScope {
		if !ctx.Env.SetParentScope(name, value) {
			ctx.Diag(policyConflict(ctx, node, "set", "PARENT_SCOPE used at global scope"))
		}
		return nil
	}
	ctx.Env.Set(name, value)
	return nil
}

func handleUnset(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "unset", "unset() requires a variable name"))
		return nil
	}
	ctx.Env.Unset(args[0])
	return nil
}

// handleOption implements option(name "help" [initial]) honoring CMP0077
// (spec.md scenario S6 / §4.3): when the policy is NEW, a pre-existing
// normal variable of the same name is left untouched.
func handleOption(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "option", "option() requires a variable name"))
		return nil
	}
	name := args[0]
	initial := "OFF"
	if len(args) >= 3 {
		initial = args[2]
	}
	if ctx.Policies.GetEffective("CMP0077") == PolicyNew && ctx.Env.Defined(name) {
		return nil
	}
	if !ctx.Env.DefinedCache(name) {
		ctx.Env.SetCache(name, boolCacheValue(initial))
	}
	return nil
}

func boolCacheValue(v string) string {
	if IsCMakeTrue(v) {
		return "ON"
	}
	return "OFF"
}

func handleBreak(ctx *Context, node *Node, args []string) error {
	ctx.BreakRequested = true
	return nil
}

func handleContinue(ctx *Context, node *Node, args []string) error {
	ctx.ContinueRequested = true
	return nil
}

func handleReturn(ctx *Context, node *Node, args []string) error {
	ctx.ReturnRequested = true
	return nil
}

func handleFunctionDef(ctx *Context, node *Node, args []string) error {
	ctx.UserCmds.Register(&UserCommand{
		Name: node.DefName, Kind: UserCommandFunction, Params: node.DefParams, Body: node.Body,
	})
	return nil
}

func handleMacroDef(ctx *Context, node *Node, args []string) error {
	ctx.UserCmds.Register(&UserCommand{
		Name: node.DefName, Kind: UserCommandMacro, Params: node.DefParams, Body: node.Body,
	})
	return nil
}

// InvokeUserCommand runs a previously registered function/macro body
// (spec.md §4.7).
func InvokeUserCommand(ctx *Context, cmd *UserCommand, args []string) error {
	switch cmd.Kind {
	case UserCommandFunction:
		ctx.Env.PushScope()
		ctx.Macros.Push(NewMacroBindFrame(cmd.Params, args))
		defer func() {
			ctx.Macros.Pop()
			ctx.Env.PopScope()
		}()
	case UserCommandMacro:
		ctx.Macros.Push(NewMacroBindFrame(cmd.Params, args))
		defer ctx.Macros.Pop()
	}
	if err := RunBlock(ctx, cmd.Body); err != nil {
		return err
	}
	ctx.ReturnRequested = false
	return nil
}

func removeAt(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}

func originOf(ctx *Context, node *Node) Origin {
	var o Origin
	switch {
	case node.Command != nil:
		o = Origin{CommandName: node.Command.Name, Line: node.Command.Pos.Line}
	case node.Open != nil:
		o = Origin{CommandName: node.Open.Name, Line: node.Open.Pos.Line}
	}
	if v := ctx.Env.Get("CMAKE_CURRENT_SOURCE_DIR"); v != "" {
		o.File = v
	}
	return o
}

func inputError(ctx *Context, node *Node, command, cause string) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError, Component: "handler", Command: command,
		Origin: originOf(ctx, node), Cause: cause, Class: ClassInputError, Code: "E-INPUT",
	}
}

func policyConflict(ctx *Context, node *Node, command, cause string) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError, Component: "handler", Command: command,
		Origin: originOf(ctx, node), Cause: cause, Class: ClassPolicyConflict, Code: "E-POLICY",
	}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}
