package engine

import (
	"strconv"
	"strings"
)

// UserCommandKind distinguishes function() from macro() bodies.
type UserCommandKind int

const (
	UserCommandFunction UserCommandKind = iota
	UserCommandMacro
)

// UserCommand is a stored function/macro body: a reference to the parsed
// AST slice, not re-serialized text (spec.md §9 design note).
type UserCommand struct {
	Name   string
	Kind   UserCommandKind
	Params []string
	Body   []Node
}

// UserCommandRegistry maps lower-cased command names to their bodies.
type UserCommandRegistry struct {
	commands map[string]*UserCommand
}

// NewUserCommandRegistry returns an empty registry.
func NewUserCommandRegistry() *UserCommandRegistry {
	return &UserCommandRegistry{commands: make(map[string]*UserCommand)}
}

// Register stores cmd, overwriting any prior definition of the same name
// (CMake allows redefining function/macro; it is not an error).
func (r *UserCommandRegistry) Register(cmd *UserCommand) {
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

// Lookup finds a previously registered function or macro by name.
func (r *UserCommandRegistry) Lookup(name string) (*UserCommand, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// MacroFrame is a textual argument-substitution frame pushed for each macro()
// and function() invocation. Unlike a variable scope, it is consulted *before*
// the variable environment during argument resolution (spec.md §4.2) and is
// kept on its own MacroFrameStack, separate from the variable stack.
type MacroFrame struct {
	binds map[string]string
}

// NewMacroBindFrame builds the bind set for invoking a macro/function with
// the given formal parameter names and actual argument values, following
// CMake's ARGC/ARGV/ARGVn/ARGN/named-parameter convention.
func NewMacroBindFrame(params []string, args []string) *MacroFrame {
	f := &MacroFrame{binds: make(map[string]string)}
	f.binds["ARGC"] = strconv.Itoa(len(args))
	f.binds["ARGV"] = JoinSemicolonList(args)
	for i, v := range args {
		f.binds["ARGV"+strconv.Itoa(i)] = v
	}
	for i, p := range params {
		if i < len(args) {
			f.binds[p] = args[i]
		} else {
			f.binds[p] = ""
		}
	}
	var extra []string
	if len(args) > len(params) {
		extra = args[len(params):]
	}
	f.binds["ARGN"] = JoinSemicolonList(extra)
	return f
}

// Get returns the bound value for name, or ("", false) if name is not bound
// in this frame.
func (f *MacroFrame) Get(name string) (string, bool) {
	v, ok := f.binds[name]
	return v, ok
}

// MacroFrameStack is the stack of active macro-bind frames; argument
// resolution consults the top frame (if any) before the variable
// environment.
type MacroFrameStack struct {
	frames []*MacroFrame
}

// Push pushes a new macro-bind frame.
func (s *MacroFrameStack) Push(f *MacroFrame) {
	s.frames = append(s.frames, f)
}

// Pop removes the most recently pushed frame.
func (s *MacroFrameStack) Pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Top returns the current macro-bind frame, or nil if none is active
// (ordinary, non-macro execution).
func (s *MacroFrameStack) Top() *MacroFrame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}
