package engine

import (
	"bitbucket.org/creachadair/stringset"
)

// TargetKind enumerates the target/library types the registry and
// add_executable/add_library handlers recognize.
type TargetKind int

const (
	TargetExecutable TargetKind = iota
	TargetStatic
	TargetShared
	TargetModule
	TargetObject
	TargetInterface
	TargetUnknown
	TargetCustom
	TargetImportedAlias
)

// TargetRegistry tracks known_targets and alias_targets (spec.md §3):
// a name appears at most once in known_targets, and every alias's referent
// must already be a non-alias member.
type TargetRegistry struct {
	known   stringset.Set
	aliases stringset.Set
	kinds   map[string]TargetKind
}

// NewTargetRegistry returns an empty registry.
func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{
		known:   stringset.New(),
		aliases: stringset.New(),
		kinds:   make(map[string]TargetKind),
	}
}

// Known reports whether name is already a registered target (alias or not).
func (r *TargetRegistry) Known(name string) bool {
	return r.known.Contains(name)
}

// IsAlias reports whether name is registered as an alias.
func (r *TargetRegistry) IsAlias(name string) bool {
	return r.aliases.Contains(name)
}

// Register adds name as a new, non-alias target of the given kind. It
// returns false (a duplicate-declaration diagnostic at the call site) if
// name is already known.
func (r *TargetRegistry) Register(name string, kind TargetKind) bool {
	if r.known.Contains(name) {
		return false
	}
	r.known.Add(name)
	r.kinds[name] = kind
	return true
}

// RegisterAlias registers name as an alias of referent. It fails if name is
// already known, referent is not yet a known non-alias target, or referent
// is itself an alias (spec.md §3 invariant).
func (r *TargetRegistry) RegisterAlias(name, referent string) bool {
	if r.known.Contains(name) {
		return false
	}
	if !r.known.Contains(referent) || r.aliases.Contains(referent) {
		return false
	}
	r.known.Add(name)
	r.aliases.Add(name)
	r.kinds[name] = TargetImportedAlias
	return true
}

// Kind returns the registered kind for name, or TargetUnknown with ok=false
// if name is not registered.
func (r *TargetRegistry) Kind(name string) (TargetKind, bool) {
	kind, ok := r.kinds[name]
	return kind, ok
}

// Names returns all known target names (including aliases), unordered.
func (r *TargetRegistry) Names() []string {
	return r.known.Elements()
}
