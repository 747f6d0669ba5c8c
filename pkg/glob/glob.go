package glob

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher is a compiled wildcard pattern. The zero value matches
// nothing; obtain matchers from Compile or MustCompile.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// Compile converts a wildcard pattern into a Matcher. A '*' matches
// zero or more arbitrary characters; all other characters match
// literally. The compiled matcher is anchored at both ends.
func Compile(pattern string) (Matcher, error) {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}

	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return Matcher{}, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}

	return Matcher{pattern: pattern, re: re}, nil
}

// MustCompile is like Compile but panics on error. Intended for
// patterns known valid at compile time, primarily in tests.
func MustCompile(pattern string) Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether the full input string matches the pattern.
func (m Matcher) Match(s string) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(s)
}

// Pattern returns the original wildcard pattern the matcher was
// compiled from.
func (m Matcher) Pattern() string {
	return m.pattern
}

// String implements fmt.Stringer.
func (m Matcher) String() string {
	return m.pattern
}

// Pair binds a compiled matcher to the value it should be tested
// against.
type Pair struct {
	Matcher Matcher
	Value   string
}

// AllMatch reports whether every pair matches. An empty pair list is
// vacuously true.
func AllMatch(pairs []Pair) bool {
	for _, p := range pairs {
		if !p.Matcher.Match(p.Value) {
			return false
		}
	}
	return true
}
