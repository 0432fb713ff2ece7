package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kythe/cmakeval/cmakelib/environment"
)

// PolicyStatus is the per-slot state of a CMPxxxx policy.
type PolicyStatus int

const (
	PolicyUnset PolicyStatus = iota
	PolicyOld
	PolicyNew
)

func (s PolicyStatus) String() string {
	switch s {
	case PolicyOld:
		return "OLD"
	case PolicyNew:
		return "NEW"
	default:
		return ""
	}
}

func parsePolicyStatus(s string) PolicyStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OLD":
		return PolicyOld
	case "NEW":
		return PolicyNew
	default:
		return PolicyUnset
	}
}

// PolicyScope is the scope tag a known policy is declared with.
type PolicyScope int

const (
	ScopeGlobal PolicyScope = iota
	ScopeBlock
	ScopeFlowBlock
)

// semver is a strict 2-to-4-component version used for policy gating and
// cmake_minimum_required ranges; a fourth (tweak) component is validated
// but not stored.
type semver struct {
	major, minor, patch int
}

func (v semver) compare(o semver) int {
	switch {
	case v.major != o.major:
		return sign(v.major - o.major)
	case v.minor != o.minor:
		return sign(v.minor - o.minor)
	default:
		return sign(v.patch - o.patch)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func (v semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// parseSemver parses a strict 2-to-4-component "M.m[.p[.t]]" version; the
// tweak component is validated and then dropped.
func parseSemver(s string) (semver, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 || len(parts) > 4 {
		return semver{}, false
	}
	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return semver{}, false
		}
		nums[i] = n
	}
	return semver{nums[0], nums[1], nums[2]}, true
}

// policyDefaultEntry is a row of the fixed known-policy table.
type policyDefaultEntry struct {
	ID             string
	Switch         semver
	Before         PolicyStatus
	AtOrAfter      PolicyStatus
	Scope          PolicyScope
	Description    string
}

// knownPolicies is the fixed capability table of policies the evaluator
// understands. Grounded on original_source/src_v2/evaluator/eval_policy_engine.c,
// whose only wired row is CMP0124; CMP0077 is added per spec.md scenario S6.
var knownPolicies = []policyDefaultEntry{
	{
		ID:          "CMP0077",
		Switch:      semver{3, 13, 0},
		Before:      PolicyOld,
		AtOrAfter:   PolicyNew,
		Scope:       ScopeBlock,
		Description: "option() honors a pre-existing normal variable of the same name",
	},
	{
		ID:          "CMP0124",
		Switch:      semver{3, 21, 0},
		Before:      PolicyOld,
		AtOrAfter:   PolicyNew,
		Scope:       ScopeFlowBlock,
		Description: "foreach() loop variables are scoped to the loop body",
	},
}

func findPolicyDefault(id string) (policyDefaultEntry, bool) {
	canon := strings.ToUpper(id)
	for _, p := range knownPolicies {
		if p.ID == canon {
			return p, true
		}
	}
	return policyDefaultEntry{}, false
}

// IsPolicyID reports whether id has the CMPxxxx shape.
func IsPolicyID(id string) bool {
	if len(id) != 7 {
		return false
	}
	upper := strings.ToUpper(id)
	if upper[:3] != "CMP" {
		return false
	}
	for _, c := range upper[3:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// PolicyEngine is the stacked policy state described in spec.md §4.3: a
// depth counter shared with block(SCOPE_FOR POLICIES)/cmake_policy(PUSH|POP),
// and per-depth slots for each known policy id.
type PolicyEngine struct {
	env    *environment.Environment
	slots  []map[string]PolicyStatus // index 0 unused; depth starts at 1
}

// NewPolicyEngine returns a PolicyEngine at depth 1, reading version-gated
// defaults and legacy/override mirrors from env.
func NewPolicyEngine(env *environment.Environment) *PolicyEngine {
	return &PolicyEngine{
		env:   env,
		slots: []map[string]PolicyStatus{nil, {}},
	}
}

// Depth returns the current policy stack depth, starting at 1.
func (p *PolicyEngine) Depth() int {
	return len(p.slots) - 1
}

// Push starts a new policy scope (cmake_policy(PUSH), block(SCOPE_FOR POLICIES)).
func (p *PolicyEngine) Push() {
	p.slots = append(p.slots, map[string]PolicyStatus{})
}

// Pop ends the most recent policy scope. It reports false (a policy-conflict
// diagnostic at the call site) if called at depth 1.
func (p *PolicyEngine) Pop() bool {
	if p.Depth() <= 1 {
		return false
	}
	p.slots = p.slots[:len(p.slots)-1]
	return true
}

// Set writes status for id at the current depth, plus the legacy mirror
// variable CMAKE_POLICY_<id> (write-only: GetEffective never reads it back,
// so it cannot leak a slot's value past a later Pop). It reports false if id
// or status is invalid.
func (p *PolicyEngine) Set(id string, status PolicyStatus) bool {
	if !IsPolicyID(id) || status == PolicyUnset {
		return false
	}
	canon := strings.ToUpper(id)
	p.slots[len(p.slots)-1][canon] = status
	if p.env != nil {
		p.env.Set("CMAKE_POLICY_"+canon, status.String())
	}
	return true
}

// GetEffective resolves id's effective status: per-depth slot (scanning
// downward from the top), then CMAKE_POLICY_DEFAULT_<id>, then the
// version-gated built-in default keyed to CMAKE_POLICY_VERSION (spec.md
// §4.3 — the legacy CMAKE_POLICY_<id> mirror Set writes is not consulted
// here, since it is an unscoped variable write and would otherwise leak a
// PUSH'd-and-POP'd SET straight past the policy stack). Unknown ids return
// PolicyUnset.
func (p *PolicyEngine) GetEffective(id string) PolicyStatus {
	if !IsPolicyID(id) {
		return PolicyUnset
	}
	canon := strings.ToUpper(id)
	for d := len(p.slots) - 1; d >= 1; d-- {
		if status, ok := p.slots[d][canon]; ok {
			return status
		}
	}
	if p.env != nil {
		if status := parsePolicyStatus(p.env.Get("CMAKE_POLICY_DEFAULT_" + canon)); status != PolicyUnset {
			return status
		}
	}
	entry, ok := findPolicyDefault(canon)
	if !ok {
		return PolicyUnset
	}
	version, ok := parseSemver(p.versionString())
	if !ok {
		return entry.Before
	}
	if version.compare(entry.Switch) >= 0 {
		return entry.AtOrAfter
	}
	return entry.Before
}

func (p *PolicyEngine) versionString() string {
	if p.env == nil {
		return ""
	}
	return p.env.Get("CMAKE_POLICY_VERSION")
}

// SweepToVersion sets every known policy to OLD or NEW at the current depth
// according to whether its switch version is <= the given policy version.
// Called by cmake_minimum_required after computing CMAKE_POLICY_VERSION.
func (p *PolicyEngine) SweepToVersion(version semver) {
	for _, entry := range knownPolicies {
		if version.compare(entry.Switch) >= 0 {
			p.Set(entry.ID, entry.AtOrAfter)
		} else {
			p.Set(entry.ID, entry.Before)
		}
	}
}

// flooredMinimumPolicyVersion is CMake's floor of 2.4, applied by
// cmake_minimum_required to the computed policy version (the range maximum
// if given, else the minimum). See spec.md §9 open question about this
// constant.
var flooredMinimumPolicyVersion = semver{2, 4, 0}
