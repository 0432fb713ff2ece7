package engine

import "strings"

func cpackOptionMap(args []string) map[string]string {
	opts := map[string]string{}
	key := ""
	for _, a := range args {
		upper := strings.ToUpper(a)
		switch upper {
		case "DISPLAY_NAME", "DESCRIPTION", "GROUP", "PARENT_GROUP", "WEIGHT", "INSTALL_TYPES", "CONFIGURATIONS":
			key = upper
			continue
		}
		if key != "" {
			if existing, ok := opts[key]; ok {
				opts[key] = existing + " " + a
			} else {
				opts[key] = a
			}
		}
	}
	return opts
}

func handleCPackAddComponent(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "cpack_add_component", "cpack_add_component() requires a name"))
		return nil
	}
	opts := cpackOptionMap(args[1:])
	ctx.Events.Emit(Event{
		Kind: EventCPackRule, Origin: originOf(ctx, node), Name: args[0],
		Key: "COMPONENT", Value: opts["DISPLAY_NAME"],
	})
	return nil
}

func handleCPackAddComponentGroup(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "cpack_add_component_group", "cpack_add_component_group() requires a name"))
		return nil
	}
	opts := cpackOptionMap(args[1:])
	ctx.Events.Emit(Event{
		Kind: EventCPackRule, Origin: originOf(ctx, node), Name: args[0],
		Key: "COMPONENT_GROUP", Value: opts["DISPLAY_NAME"],
	})
	return nil
}

func handleCPackAddInstallType(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "cpack_add_install_type", "cpack_add_install_type() requires a name"))
		return nil
	}
	opts := cpackOptionMap(args[1:])
	ctx.Events.Emit(Event{
		Kind: EventCPackRule, Origin: originOf(ctx, node), Name: args[0],
		Key: "INSTALL_TYPE", Value: opts["DISPLAY_NAME"],
	})
	return nil
}
