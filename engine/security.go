package engine

import (
	"fmt"
	"os"
	"path/filepath"

	kpath "github.com/kythe/cmakeval/path"
)

// PathIntent distinguishes the base directory a relative path resolves
// against (spec.md §4.9).
type PathIntent int

const (
	IntentReadOrWriteAdjacent PathIntent = iota
	IntentGeneratedOutput
)

// SecurityViolationError is returned by ResolveAndValidatePath when raw
// resolves outside every allowed root.
type SecurityViolationError struct {
	Raw      string
	Resolved string
}

func (e *SecurityViolationError) Error() string {
	return fmt.Sprintf("Security Violation: path %q resolves to %q, outside allowed roots", e.Raw, e.Resolved)
}

// PathPolicy is the set of allowed containment roots for file(...) path
// operations: CMAKE_SOURCE_DIR, CMAKE_BINARY_DIR, plus any explicitly added
// roots.
type PathPolicy struct {
	roots []string
}

// NewPathPolicy builds a policy rooted at the given source and binary
// directories.
func NewPathPolicy(sourceDir, binaryDir string) *PathPolicy {
	return &PathPolicy{roots: []string{sourceDir, binaryDir}}
}

// AddRoot extends the allowed set with an additional containment root.
func (p *PathPolicy) AddRoot(root string) {
	p.roots = append(p.roots, root)
}

// ResolveAndValidatePath resolves raw against base (used only when raw is
// relative) according to intent, then checks the result is contained in one
// of the policy's allowed roots. It is the single primitive every
// path-consuming file(...) subcommand must call (spec.md §9 design note).
func (p *PathPolicy) ResolveAndValidatePath(raw, sourceBase, binaryBase string, intent PathIntent) (string, error) {
	base := sourceBase
	if intent == IntentGeneratedOutput {
		base = binaryBase
	}
	resolved := raw
	if !filepath.IsAbs(raw) {
		resolved = filepath.Join(base, raw)
	}
	resolved = filepath.Clean(resolved)
	if !p.contains(resolved) {
		return "", &SecurityViolationError{Raw: raw, Resolved: resolved}
	}
	return resolved, nil
}

func (p *PathPolicy) contains(resolved string) bool {
	target := kpath.New(resolved)
	for _, root := range p.roots {
		if root == "" {
			continue
		}
		if isPathContained(kpath.New(root), target) {
			return true
		}
	}
	return false
}

// pathExists backs if(EXISTS path); it intentionally performs no security
// containment check, matching CMake's own read-only existence predicate.
func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// pathIsDir backs if(IS_DIRECTORY path).
func pathIsDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// isPathContained reports whether target is root or a descendant of root,
// compared by whole path segment rather than by string prefix (so
// "/home/foobar" is not considered contained in "/home/foo").
func isPathContained(root, target kpath.Path) bool {
	if len(target) < len(root) {
		return false
	}
	for i, seg := range root {
		if target[i] != seg {
			return false
		}
	}
	return true
}
