package engine

import (
	"github.com/kythe/cmakeval/cmakelib/ast"
	"github.com/kythe/cmakeval/cmakelib/environment"
)

// bindingsView adapts an Environment plus the current macro-bind frame (if
// any) into an ast.Bindings, giving the macro frame first refusal on Get
// (spec.md §4.2: ARGV/ARGN and named parameters shadow ordinary variables of
// the same name for the duration of the macro body).
type bindingsView struct {
	env   *environment.Environment
	frame *MacroFrame
}

func (b bindingsView) Get(name string) string {
	if b.frame != nil {
		if v, ok := b.frame.Get(name); ok {
			return v
		}
	}
	return b.env.Get(name)
}

func (b bindingsView) GetCache(name string) string { return b.env.GetCache(name) }
func (b bindingsView) GetEnv(name string) string   { return b.env.GetEnv(name) }

// ResolveArguments expands an ArgumentList to its final flat argument vector:
// variable/cache/env substitution via the AST's own Eval, then top-level
// semicolon-list splitting of every resulting unquoted value (genex spans are
// left intact; spec.md invariant #4). Quoted and bracket arguments never
// split, matching CMake's one-argument-per-quoted-string rule.
func ResolveArguments(args *ast.ArgumentList, env *environment.Environment, frame *MacroFrame) []string {
	view := bindingsView{env: env, frame: frame}
	var out []string
	for i := range args.Values {
		out = append(out, resolveOneArgument(&args.Values[i], view)...)
	}
	return out
}

func resolveOneArgument(a *ast.Argument, view bindingsView) []string {
	switch {
	case a.QuotedArgument != nil, a.BracketArgument != nil:
		return a.Eval(view)
	case a.ArgumentList != nil:
		return a.Eval(view)
	default:
		var out []string
		for _, v := range a.Eval(view) {
			out = append(out, SplitSemicolonList(v)...)
		}
		return out
	}
}
