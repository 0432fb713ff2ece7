package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RunBlock executes a nested statement list, honoring the cooperative
// break/continue/return/stop flags at each statement boundary (spec.md §9).
func RunBlock(ctx *Context, nodes []Node) error {
	for i := range nodes {
		if ctx.ShouldShortCircuit() {
			return nil
		}
		if err := runNode(ctx, &nodes[i]); err != nil {
			return err
		}
		if err := ctx.TempArena.Reset(); err != nil {
			ctx.Diag(&Diagnostic{
				Severity: SeverityError, Component: "arena", Command: "",
				Cause: err.Error(), Class: ClassEngineLimitation, Code: "E-ARENA",
			})
		}
	}
	return nil
}

func runNode(ctx *Context, node *Node) error {
	switch node.Kind {
	case NodeCommand:
		return runCommandNode(ctx, node)
	case NodeIf:
		return runIf(ctx, node)
	case NodeForEach:
		return runForEach(ctx, node)
	case NodeWhile:
		return runWhile(ctx, node)
	case NodeBlock:
		return runBlockStmt(ctx, node)
	case NodeFunctionDef:
		return handleFunctionDef(ctx, node, nil)
	case NodeMacroDef:
		return handleMacroDef(ctx, node, nil)
	}
	return nil
}

func runCommandNode(ctx *Context, node *Node) error {
	name := strings.ToLower(node.Command.Name)
	if cmd, ok := ctx.UserCmds.Lookup(name); ok {
		args := ResolveArguments(&node.Command.Arguments, ctx.Env, ctx.Macros.Top())
		return InvokeUserCommand(ctx, cmd, args)
	}
	return Dispatch(ctx, node)
}

func runIf(ctx *Context, node *Node) error {
	for _, branch := range node.Branches {
		var take bool
		if branch.Command == nil {
			take = true
		} else {
			args := ResolveArguments(&branch.Command.Arguments, ctx.Env, ctx.Macros.Top())
			take = evaluateCondition(ctx, args)
		}
		if take {
			return RunBlock(ctx, branch.Body)
		}
	}
	return nil
}

func runForEach(ctx *Context, node *Node) error {
	args := ResolveArguments(&node.Open.Arguments, ctx.Env, ctx.Macros.Top())
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "foreach", "foreach() requires a loop variable"))
		return nil
	}
	loopVar := args[0]
	rest := args[1:]

	if listVars, ok := zipListsArgs(rest); ok {
		lists := make([][]string, len(listVars))
		n := 0
		for i, v := range listVars {
			lists[i] = SplitSemicolonList(ctx.Env.Get(v))
			if len(lists[i]) > n {
				n = len(lists[i])
			}
		}
		return runForEachLoop(ctx, node, n, func(i int) {
			ctx.Env.Set(loopVar, strconv.Itoa(i))
			for li, l := range lists {
				val := ""
				if i < len(l) {
					val = l[i]
				}
				ctx.Env.Set(fmt.Sprintf("%s_%d", loopVar, li), val)
			}
		})
	}

	items, err := foreachItems(ctx, rest)
	if err != nil {
		ctx.Diag(inputError(ctx, node, "foreach", err.Error()))
		return nil
	}
	return runForEachLoop(ctx, node, len(items), func(i int) {
		ctx.Env.Set(loopVar, items[i])
	})
}

// zipListsArgs reports whether rest is an "IN ZIP_LISTS <lists>" clause,
// returning the named lists.
func zipListsArgs(rest []string) ([]string, bool) {
	if len(rest) >= 2 && strings.EqualFold(rest[0], "IN") && strings.EqualFold(rest[1], "ZIP_LISTS") {
		return rest[2:], true
	}
	return nil, false
}

// runForEachLoop drives n iterations of node.Body, calling bind(i) to set
// the loop variable(s) before each one; shared by the plain/RANGE/LISTS/
// ITEMS forms and the ZIP_LISTS form (spec.md §4.6's break/continue/
// CMP0124-scoping rules apply identically to both).
func runForEachLoop(ctx *Context, node *Node, n int, bind func(i int)) error {
	pushLoopScope := ctx.Policies.GetEffective("CMP0124") == PolicyNew
	if pushLoopScope {
		ctx.Env.PushScope()
	}
	ctx.LoopDepth++
	for i := 0; i < n; i++ {
		bind(i)
		if err := RunBlock(ctx, node.Body); err != nil {
			if pushLoopScope {
				ctx.Env.PopScope()
			}
			ctx.LoopDepth--
			return err
		}
		if ctx.BreakRequested {
			ctx.BreakRequested = false
			break
		}
		if ctx.ContinueRequested {
			ctx.ContinueRequested = false
		}
		if ctx.ShouldShortCircuit() {
			break
		}
	}
	ctx.LoopDepth--
	if pushLoopScope {
		ctx.Env.PopScope()
	}
	return nil
}

// foreachItems implements the RANGE / IN LISTS|ITEMS / plain forms.
// IN ZIP_LISTS is intercepted earlier by zipListsArgs/runForEach, since it
// needs real parallel iteration (per-list index variables), not a flattened
// item list.
func foreachItems(ctx *Context, rest []string) ([]string, error) {
	if len(rest) == 0 {
		return nil, nil
	}
	if strings.EqualFold(rest[0], "RANGE") {
		nums := rest[1:]
		var start, stop, step int = 0, 0, 1
		switch len(nums) {
		case 1:
			stop, _ = strconv.Atoi(nums[0])
		case 2:
			start, _ = strconv.Atoi(nums[0])
			stop, _ = strconv.Atoi(nums[1])
		case 3:
			start, _ = strconv.Atoi(nums[0])
			stop, _ = strconv.Atoi(nums[1])
			step, _ = strconv.Atoi(nums[2])
		}
		var out []string
		if step == 0 {
			step = 1
		}
		if step > 0 {
			for v := start; v <= stop; v += step {
				out = append(out, strconv.Itoa(v))
			}
		} else {
			for v := start; v >= stop; v += step {
				out = append(out, strconv.Itoa(v))
			}
		}
		return out, nil
	}
	if strings.EqualFold(rest[0], "IN") {
		var out []string
		mode := ""
		for _, tok := range rest[1:] {
			switch strings.ToUpper(tok) {
			case "LISTS":
				mode = "LISTS"
			case "ITEMS":
				mode = "ITEMS"
			default:
				switch mode {
				case "LISTS":
					out = append(out, SplitSemicolonList(ctx.Env.Get(tok))...)
				default:
					out = append(out, tok)
				}
			}
		}
		return out, nil
	}
	return rest, nil
}

func runWhile(ctx *Context, node *Node) error {
	args := ResolveArguments(&node.Open.Arguments, ctx.Env, ctx.Macros.Top())
	ctx.LoopDepth++
	defer func() { ctx.LoopDepth-- }()
	for evaluateCondition(ctx, args) {
		if err := RunBlock(ctx, node.Body); err != nil {
			return err
		}
		if ctx.BreakRequested {
			ctx.BreakRequested = false
			break
		}
		ctx.ContinueRequested = false
		if ctx.ShouldShortCircuit() {
			break
		}
		args = ResolveArguments(&node.Open.Arguments, ctx.Env, ctx.Macros.Top())
	}
	return nil
}

func runBlockStmt(ctx *Context, node *Node) error {
	args := ResolveArguments(&node.Open.Arguments, ctx.Env, ctx.Macros.Top())
	pushVars, pushPolicies := true, true
	var propagate []string
	if hasFlag(args, "SCOPE_FOR") {
		pushVars, pushPolicies = false, false
		for i, a := range args {
			if strings.EqualFold(a, "SCOPE_FOR") {
				for _, tag := range args[i+1:] {
					switch strings.ToUpper(tag) {
					case "VARIABLES":
						pushVars = true
					case "POLICIES":
						pushPolicies = true
					default:
						i = len(args)
					}
				}
			}
		}
	}
	for i, a := range args {
		if strings.EqualFold(a, "PROPAGATE") {
			propagate = args[i+1:]
		}
	}

	if pushVars {
		ctx.Env.PushScope()
	}
	if pushPolicies {
		ctx.Policies.Push()
	}

	err := RunBlock(ctx, node.Body)

	for _, name := range propagate {
		if pushVars && ctx.Env.DefinedInCurrentScope(name) {
			ctx.Env.SetParentScope(name, ctx.Env.Get(name))
		}
	}
	if pushPolicies {
		ctx.Policies.Pop()
	}
	if pushVars {
		ctx.Env.PopScope()
	}
	return err
}

var regexCache = map[string]*regexp.Regexp{}

func compileCMakeRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache[pattern] = re
	return re, nil
}

// evaluateCondition implements the if()/while() expression grammar
// (spec.md §4.6): unary predicates, binary comparisons, MATCHES/IN_LIST/
// PATH_EQUAL, and AND/OR/NOT with parentheses, left-associative.
func evaluateCondition(ctx *Context, tokens []string) bool {
	v, _ := parseOr(ctx, tokens, 0)
	return v
}

func parseOr(ctx *Context, t []string, i int) (bool, int) {
	left, i := parseAnd(ctx, t, i)
	for i < len(t) && strings.EqualFold(t[i], "OR") {
		right, ni := parseAnd(ctx, t, i+1)
		left = left || right
		i = ni
	}
	return left, i
}

func parseAnd(ctx *Context, t []string, i int) (bool, int) {
	left, i := parseNot(ctx, t, i)
	for i < len(t) && strings.EqualFold(t[i], "AND") {
		right, ni := parseNot(ctx, t, i+1)
		left = left && right
		i = ni
	}
	return left, i
}

func parseNot(ctx *Context, t []string, i int) (bool, int) {
	if i < len(t) && strings.EqualFold(t[i], "NOT") {
		v, ni := parseNot(ctx, t, i+1)
		return !v, ni
	}
	return parseAtom(ctx, t, i)
}

func parseAtom(ctx *Context, t []string, i int) (bool, int) {
	if i >= len(t) {
		return false, i
	}
	if t[i] == "(" {
		depth := 1
		j := i + 1
		for j < len(t) && depth > 0 {
			switch t[j] {
			case "(":
				depth++
			case ")":
				depth--
			}
			if depth > 0 {
				j++
			}
		}
		v, _ := parseOr(ctx, t[i+1:j], 0)
		return v, j + 1
	}

	upper := strings.ToUpper(t[i])
	switch upper {
	case "DEFINED":
		if i+1 < len(t) {
			name := t[i+1]
			name = strings.TrimPrefix(name, "ENV{")
			if strings.HasSuffix(name, "}") && strings.Contains(t[i+1], "ENV{") {
				return ctx.Env.HasEnv(strings.TrimSuffix(name, "}")), i + 2
			}
			return ctx.Env.Defined(t[i+1]), i + 2
		}
		return false, i + 1
	case "COMMAND":
		if i+1 < len(t) {
			_, ok := ctx.UserCmds.Lookup(t[i+1])
			if !ok {
				_, known := LookupCapability(t[i+1])
				ok = known
			}
			return ok, i + 2
		}
		return false, i + 1
	case "TARGET":
		if i+1 < len(t) {
			return ctx.Targets.Known(t[i+1]), i + 2
		}
		return false, i + 1
	case "POLICY":
		if i+1 < len(t) {
			return ctx.Policies.GetEffective(t[i+1]) != PolicyUnset, i + 2
		}
		return false, i + 1
	case "EXISTS":
		if i+1 < len(t) {
			return pathExists(t[i+1]), i + 2
		}
		return false, i + 1
	case "IS_DIRECTORY":
		if i+1 < len(t) {
			return pathIsDir(t[i+1]), i + 2
		}
		return false, i + 1
	}

	// Binary forms: LHS OP RHS.
	if i+2 < len(t) {
		lhs, op, rhs := t[i], strings.ToUpper(t[i+1]), t[i+2]
		switch op {
		case "MATCHES":
			re, err := compileCMakeRegex(rhs)
			if err != nil {
				return false, i + 3
			}
			return re.MatchString(lhs), i + 3
		case "IN_LIST":
			for _, item := range SplitSemicolonList(ctx.Env.Get(rhs)) {
				if item == lhs {
					return true, i + 3
				}
			}
			return false, i + 3
		case "PATH_EQUAL":
			return cleanPathForCompare(lhs) == cleanPathForCompare(rhs), i + 3
		case "EQUAL", "LESS", "GREATER", "LESS_EQUAL", "GREATER_EQUAL":
			return numericCompare(lhs, op, rhs), i + 3
		case "STREQUAL":
			return lhs == rhs, i + 3
		case "STRLESS":
			return lhs < rhs, i + 3
		case "STRGREATER":
			return lhs > rhs, i + 3
		case "VERSION_EQUAL", "VERSION_LESS", "VERSION_GREATER", "VERSION_LESS_EQUAL", "VERSION_GREATER_EQUAL":
			return versionCompare(lhs, op, rhs), i + 3
		}
	}

	// Bare single-token truthiness, resolving a variable name first.
	return IsCMakeTrue(resolveBareToken(ctx, t[i])), i + 1
}

func resolveBareToken(ctx *Context, tok string) string {
	if ctx.Env.Defined(tok) {
		return ctx.Env.Get(tok)
	}
	return tok
}

func numericCompare(lhs, op, rhs string) bool {
	a, errA := strconv.ParseFloat(lhs, 64)
	b, errB := strconv.ParseFloat(rhs, 64)
	if errA != nil || errB != nil {
		return false
	}
	switch op {
	case "EQUAL":
		return a == b
	case "LESS":
		return a < b
	case "GREATER":
		return a > b
	case "LESS_EQUAL":
		return a <= b
	case "GREATER_EQUAL":
		return a >= b
	}
	return false
}

func versionCompare(lhs, op, rhs string) bool {
	a, okA := parseSemver(padVersion(lhs))
	b, okB := parseSemver(padVersion(rhs))
	if !okA || !okB {
		return false
	}
	c := a.compare(b)
	switch op {
	case "VERSION_EQUAL":
		return c == 0
	case "VERSION_LESS":
		return c < 0
	case "VERSION_GREATER":
		return c > 0
	case "VERSION_LESS_EQUAL":
		return c <= 0
	case "VERSION_GREATER_EQUAL":
		return c >= 0
	}
	return false
}

func padVersion(v string) string {
	parts := strings.Split(v, ".")
	for len(parts) < 2 {
		parts = append(parts, "0")
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ".")
}

func cleanPathForCompare(p string) string {
	return strings.TrimSuffix(strings.ReplaceAll(p, `\`, "/"), "/")
}
