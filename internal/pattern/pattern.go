// Package pattern provides glob and regex matching behind one interface.
// possync uses it to recognize placeholder names and SKUs ("sans nom",
// "n/a", "---") that should not count as real data when scoring records.
package pattern

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Type represents the kind of pattern.
type Type int

const (
	// Glob uses shell-style patterns (*, ?, []).
	Glob Type = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the type from the pattern text.
	Auto
)

// String returns a string representation of the Type.
func (t Type) String() string {
	switch t {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches strings against one pattern.
type Matcher interface {
	// Match checks if the input matches the pattern
	Match(input string) bool
	// Pattern returns the original pattern string
	Pattern() string
	// Type returns the resolved pattern type
	Type() Type
}

// Options configures matching.
type Options struct {
	// CaseInsensitive makes matching case-insensitive
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present
	Anchored bool
}

// DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{}
}

type matcher struct {
	pattern         string
	patternType     Type
	compiled        *regexp.Regexp
	globPattern     string
	caseInsensitive bool
}

// New creates a Matcher for pattern.
func New(patternType Type, pattern string, opts ...*Options) (Matcher, error) {
	options := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{pattern: pattern, patternType: patternType}
	if patternType == Auto {
		m.patternType = Detect(pattern)
	}
	if err := m.compile(options); err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	return m, nil
}

// MustNew creates a Matcher and panics on an invalid pattern.
func MustNew(patternType Type, pattern string, opts ...*Options) Matcher {
	m, err := New(patternType, pattern, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *matcher) compile(opts *Options) error {
	m.caseInsensitive = opts.CaseInsensitive

	switch m.patternType {
	case Glob:
		m.globPattern = m.pattern
		if opts.CaseInsensitive {
			m.globPattern = strings.ToLower(m.globPattern)
		}
		if _, err := path.Match(m.globPattern, ""); err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
	case Regex:
		expr := m.pattern
		if opts.Anchored {
			if !strings.HasPrefix(expr, "^") {
				expr = "^" + expr
			}
			if !strings.HasSuffix(expr, "$") {
				expr += "$"
			}
		}
		if opts.CaseInsensitive && !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		m.compiled = compiled
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
	return nil
}

// Match checks if the input matches the pattern.
func (m *matcher) Match(input string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			input = strings.ToLower(input)
		}
		matched, _ := path.Match(m.globPattern, input)
		return matched
	case Regex:
		return m.compiled.MatchString(input)
	default:
		return false
	}
}

// Pattern returns the original pattern string.
func (m *matcher) Pattern() string {
	return m.pattern
}

// Type returns the resolved pattern type.
func (m *matcher) Type() Type {
	return m.patternType
}

// Detect guesses whether a pattern is a glob or a regex.
func Detect(pattern string) Type {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Set matches an input against several patterns.
type Set struct {
	matchers []Matcher
}

// NewSet compiles patterns into a Set.
func NewSet(patterns []string, patternType Type, opts ...*Options) (*Set, error) {
	s := &Set{matchers: make([]Matcher, 0, len(patterns))}
	for _, p := range patterns {
		m, err := New(patternType, p, opts...)
		if err != nil {
			return nil, err
		}
		s.matchers = append(s.matchers, m)
	}
	return s, nil
}

// Match returns true if any pattern matches.
func (s *Set) Match(input string) bool {
	if s == nil {
		return false
	}
	for _, m := range s.matchers {
		if m.Match(input) {
			return true
		}
	}
	return false
}

// Patterns returns the pattern strings in order.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.matchers))
	for i, m := range s.matchers {
		out[i] = m.Pattern()
	}
	return out
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matchers)
}
