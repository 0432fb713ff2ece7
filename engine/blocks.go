package engine

import (
	"fmt"
	"strings"

	"github.com/kythe/cmakeval/cmakelib/ast"
)

// NodeKind distinguishes the structured node kinds the block builder
// recovers from the parser's flat CommandInvocation stream. spec.md's data
// model describes the file as already holding IfBlock/ForEach/While/Block
// nodes; the grammar the teacher parser implements is flatter (every command,
// including `if`/`endif`, is a CommandInvocation), so the evaluator recovers
// the nested structure itself — the same counting technique the teacher's
// (now-removed) cmaketobzl tool used ad hoc for add_subdirectory recursion,
// generalized here into a proper recursive-descent block builder.
type NodeKind int

const (
	NodeCommand NodeKind = iota
	NodeIf
	NodeForEach
	NodeWhile
	NodeBlock
	NodeFunctionDef
	NodeMacroDef
)

// IfBranch is one if/elseif/else arm.
type IfBranch struct {
	Command *ast.CommandInvocation // nil for a bare "else"
	Body    []Node
}

// Node is the evaluator's structured view of one statement or block.
type Node struct {
	Kind NodeKind

	// NodeCommand
	Command *ast.CommandInvocation

	// NodeIf
	Branches []IfBranch

	// NodeForEach / NodeWhile / NodeBlock: Open carries the opening
	// command's arguments (e.g. `foreach(x RANGE 1 10)`); Body is the
	// nested statement list.
	Open *ast.CommandInvocation
	Body []Node

	// NodeFunctionDef / NodeMacroDef
	DefName   string
	DefParams []string
}

var blockOpeners = map[string]string{
	"if":       "endif",
	"foreach":  "endforeach",
	"while":    "endwhile",
	"block":    "endblock",
	"function": "endfunction",
	"macro":    "endmacro",
}

// BuildBlocks converts a flat CommandInvocation stream into a nested Node
// tree, matching block openers to their closers.
func BuildBlocks(cmds []ast.CommandInvocation) ([]Node, error) {
	nodes, rest, err := buildBlockRun(cmds, "")
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%s: unmatched %q", rest[0].Pos, rest[0].Name)
	}
	return nodes, nil
}

// buildBlockRun consumes cmds until it sees the closer named `until` (or
// exhausts the input, when until == ""), returning the built nodes and the
// remaining (unconsumed) commands.
func buildBlockRun(cmds []ast.CommandInvocation, until string) ([]Node, []ast.CommandInvocation, error) {
	var nodes []Node
	for len(cmds) > 0 {
		name := strings.ToLower(cmds[0].Name)
		if until != "" && name == until {
			return nodes, cmds[1:], nil
		}
		switch name {
		case "if":
			node, rest, err := buildIfBranches(cmds)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, node)
			cmds = rest
		case "foreach", "while", "block":
			closer := blockOpeners[name]
			body, rest, err := buildBlockRun(cmds[1:], closer)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", cmds[0].Pos, err)
			}
			kind := NodeForEach
			if name == "while" {
				kind = NodeWhile
			} else if name == "block" {
				kind = NodeBlock
			}
			nodes = append(nodes, Node{Kind: kind, Open: &cmds[0], Body: body})
			cmds = rest
		case "function", "macro":
			closer := blockOpeners[name]
			body, rest, err := buildBlockRun(cmds[1:], closer)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", cmds[0].Pos, err)
			}
			kind := NodeFunctionDef
			if name == "macro" {
				kind = NodeMacroDef
			}
			args := cmds[0].Arguments.Values
			defName, params := "", []string(nil)
			if len(args) > 0 {
				defName = rawArgText(&args[0])
				for _, a := range args[1:] {
					params = append(params, rawArgText(&a))
				}
			}
			nodes = append(nodes, Node{Kind: kind, Open: &cmds[0], Body: body, DefName: defName, DefParams: params})
			cmds = rest
		case "endif", "endforeach", "endwhile", "endblock", "endfunction", "endmacro":
			return nil, nil, fmt.Errorf("%s: %q without matching opener", cmds[0].Pos, cmds[0].Name)
		default:
			nodes = append(nodes, Node{Kind: NodeCommand, Command: &cmds[0]})
			cmds = cmds[1:]
		}
	}
	if until != "" {
		return nil, nil, fmt.Errorf("missing %q", until)
	}
	return nodes, cmds, nil
}

// buildIfBranches consumes an if/elseif*/else?/endif run starting at cmds[0].
func buildIfBranches(cmds []ast.CommandInvocation) (Node, []ast.CommandInvocation, error) {
	node := Node{Kind: NodeIf}
	opener := &cmds[0]
	rest := cmds[1:]
	branch := IfBranch{Command: opener}
	for {
		stmts, tail, stop, err := scanUntilIfBoundary(rest)
		if err != nil {
			return Node{}, nil, err
		}
		branch.Body = stmts
		node.Branches = append(node.Branches, branch)
		rest = tail
		switch stop {
		case "endif":
			return node, rest, nil
		case "elseif", "else":
			if len(rest) == 0 {
				return Node{}, nil, fmt.Errorf("%s: missing endif", opener.Pos)
			}
			branch = IfBranch{Command: &rest[0]}
			if stop == "else" {
				branch.Command = nil
			}
			rest = rest[1:]
		default:
			return Node{}, nil, fmt.Errorf("%s: missing endif", opener.Pos)
		}
	}
}

// scanUntilIfBoundary builds nested nodes (recursing through nested
// if/foreach/while/block/function/macro) until it sees elseif/else/endif at
// *this* nesting level, returning which boundary command stopped it.
func scanUntilIfBoundary(cmds []ast.CommandInvocation) ([]Node, []ast.CommandInvocation, string, error) {
	var nodes []Node
	for len(cmds) > 0 {
		name := strings.ToLower(cmds[0].Name)
		switch name {
		case "elseif", "else", "endif":
			return nodes, cmds, name, nil
		case "if":
			node, rest, err := buildIfBranches(cmds)
			if err != nil {
				return nil, nil, "", err
			}
			nodes = append(nodes, node)
			cmds = rest
		case "foreach", "while", "block", "function", "macro":
			closer := blockOpeners[name]
			body, rest, err := buildBlockRun(cmds[1:], closer)
			if err != nil {
				return nil, nil, "", fmt.Errorf("%s: %w", cmds[0].Pos, err)
			}
			var kind NodeKind
			var defName string
			var params []string
			switch name {
			case "foreach":
				kind = NodeForEach
			case "while":
				kind = NodeWhile
			case "block":
				kind = NodeBlock
			case "function":
				kind = NodeFunctionDef
			case "macro":
				kind = NodeMacroDef
			}
			if kind == NodeFunctionDef || kind == NodeMacroDef {
				args := cmds[0].Arguments.Values
				if len(args) > 0 {
					defName = rawArgText(&args[0])
					for _, a := range args[1:] {
						params = append(params, rawArgText(&a))
					}
				}
			}
			nodes = append(nodes, Node{Kind: kind, Open: &cmds[0], Body: body, DefName: defName, DefParams: params})
			cmds = rest
		case "endforeach", "endwhile", "endblock", "endfunction", "endmacro":
			return nil, nil, "", fmt.Errorf("%s: %q without matching opener", cmds[0].Pos, cmds[0].Name)
		default:
			nodes = append(nodes, Node{Kind: NodeCommand, Command: &cmds[0]})
			cmds = cmds[1:]
		}
	}
	return nodes, cmds, "", nil
}

// rawArgText returns the unresolved literal text of a single argument, used
// only for function/macro declaration names and parameter lists, which
// CMake does not variable-expand.
func rawArgText(a *ast.Argument) string {
	switch {
	case a.QuotedArgument != nil:
		var b strings.Builder
		for _, e := range a.QuotedArgument.Elements {
			b.WriteString(e.Text)
		}
		return b.String()
	case a.UnquotedArgument != nil:
		var b strings.Builder
		for _, e := range a.UnquotedArgument.Elements {
			b.WriteString(e.Text)
		}
		return b.String()
	case a.BracketArgument != nil:
		return a.BracketArgument.Text
	}
	return ""
}
