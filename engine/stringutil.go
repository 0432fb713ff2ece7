package engine

import (
	"strings"

	"github.com/samber/lo"
)

// cmakeFalseLiterals is the fixed CMake-false vocabulary (case-insensitive),
// per spec.md §4.4. Anything ending in "-NOTFOUND" is false regardless of
// what precedes it and is checked separately.
var cmakeFalseLiterals = map[string]bool{
	"":         true,
	"0":        true,
	"off":      true,
	"no":       true,
	"false":    true,
	"n":        true,
	"ignore":   true,
	"notfound": true,
}

// IsCMakeFalse reports whether value is one of CMake's false spellings.
func IsCMakeFalse(value string) bool {
	lower := strings.ToLower(value)
	if cmakeFalseLiterals[lower] {
		return true
	}
	return strings.HasSuffix(lower, "-notfound")
}

// IsCMakeTrue is the negation of IsCMakeFalse; CMake has no third state at
// this layer (an undefined variable simply expands to "").
func IsCMakeTrue(value string) bool {
	return !IsCMakeFalse(value)
}

// EqualFoldASCII performs CMake's case-insensitive comparisons (keyword
// matching, policy ids, TYPE tokens).
func EqualFoldASCII(a, b string) bool {
	return strings.EqualFold(a, b)
}

// SplitSemicolonList splits an already-resolved value on unescaped, top-level
// semicolons, skipping any run enclosed in a generator expression ($<...>).
// Escaped semicolons (the literal two bytes `\;`, surviving because the
// resolver only processes escapes once during the argument walk — if the
// caller has already unescaped them this function is also safe to use on
// fully-expanded values) are not treated as separators. Empty fragments are
// dropped, matching CMake list semantics.
func SplitSemicolonList(value string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(value); i++ {
		switch {
		case value[i] == '\\' && i+1 < len(value):
			i++ // skip escaped character, including `\;`
		case value[i] == '$' && i+1 < len(value) && value[i+1] == '<':
			depth++
			i++
		case value[i] == '>' && depth > 0:
			depth--
		case value[i] == ';' && depth == 0:
			if frag := value[start:i]; frag != "" {
				out = append(out, frag)
			}
			start = i + 1
		}
	}
	if frag := value[start:]; frag != "" {
		out = append(out, frag)
	}
	return out
}

// JoinSemicolonList is the inverse of SplitSemicolonList: CMake represents
// lists as a single semicolon-joined string.
func JoinSemicolonList(items []string) string {
	return strings.Join(items, ";")
}

// AppendUnique appends each of values to list, skipping any that are already
// present, and returns the result. Used by the directory/global option
// handlers (add_definitions, add_compile_options, add_link_options,
// link_libraries, include_directories, link_directories) which all
// de-duplicate as they accumulate (spec.md §4.8).
func AppendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !lo.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

// ContainsGenex reports whether s contains a generator-expression opener.
func ContainsGenex(s string) bool {
	return strings.Contains(s, "$<")
}
