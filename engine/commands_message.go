package engine

import (
	"strings"
)

func handleMessage(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		return nil
	}
	mode := ""
	rest := args
	switch strings.ToUpper(args[0]) {
	case "FATAL_ERROR", "SEND_ERROR", "WARNING", "AUTHOR_WARNING", "DEPRECATION",
		"NOTICE", "STATUS", "VERBOSE", "DEBUG", "TRACE",
		"CHECK_START", "CHECK_PASS", "CHECK_FAIL", "CONFIGURE_LOG":
		mode = strings.ToUpper(args[0])
		rest = args[1:]
	}

	switch mode {
	case "CHECK_START":
		text := strings.Join(rest, "")
		ctx.CheckStack = append(ctx.CheckStack, checkEntry{Description: text})
		ctx.Log.Info(text + " ...")
		return nil
	case "CHECK_PASS", "CHECK_FAIL":
		if len(ctx.CheckStack) == 0 {
			return nil
		}
		top := ctx.CheckStack[len(ctx.CheckStack)-1]
		ctx.CheckStack = ctx.CheckStack[:len(ctx.CheckStack)-1]
		result := strings.Join(rest, "")
		ctx.Log.Infof("%s - %s", top.Description, result)
		return nil
	case "CONFIGURE_LOG":
		text := strings.Join(rest, "")
		backtrace := []string{originOf(ctx, node).CommandName}
		var checks []string
		for _, c := range ctx.CheckStack {
			checks = append(checks, c.Description)
		}
		binDir := ctx.Env.Get("CMAKE_BINARY_DIR")
		if err := AppendConfigureLog(binDir, text, backtrace, checks); err != nil {
			ctx.Diag(&Diagnostic{
				Severity: SeverityWarning, Component: "handler", Command: "message", Origin: originOf(ctx, node),
				Cause: err.Error(), Class: ClassIoEnvError, Code: "W-CONFIGURE-LOG",
			})
		}
		return nil
	}

	text := strings.Join(rest, "")

	switch mode {
	case "FATAL_ERROR":
		ctx.Fatal(&Diagnostic{
			Component: "message", Command: "message", Origin: originOf(ctx, node),
			Cause: text, Class: ClassInputError, Code: "E-FATAL",
		})
	case "SEND_ERROR":
		ctx.Diag(&Diagnostic{
			Severity: SeverityError, Component: "message", Command: "message", Origin: originOf(ctx, node),
			Cause: text, Class: ClassInputError, Code: "E-MESSAGE",
		})
	case "DEPRECATION":
		severity := SeverityWarning
		if IsCMakeTrue(ctx.Env.Get("CMAKE_ERROR_DEPRECATED")) {
			severity = SeverityError
		} else if !IsCMakeTrue(ctx.Env.Get("CMAKE_WARN_DEPRECATED")) && ctx.Env.Defined("CMAKE_WARN_DEPRECATED") {
			return nil
		}
		ctx.Diag(&Diagnostic{
			Severity: severity, Component: "message", Command: "message", Origin: originOf(ctx, node),
			Cause: text, Class: ClassInputError, Code: "W-DEPRECATED",
		})
	case "WARNING", "AUTHOR_WARNING":
		ctx.Diag(&Diagnostic{
			Severity: SeverityWarning, Component: "message", Command: "message", Origin: originOf(ctx, node),
			Cause: text, Class: ClassInputError, Code: "W-MESSAGE",
		})
	case "VERBOSE", "DEBUG", "TRACE":
		ctx.Log.Debug(text)
	default:
		ctx.Log.Info(text)
	}
	return nil
}
