package differ

import (
	"strings"

	"github.com/5sensprod/possync/pkg/errors"
)

// AbsencePolicy decides how a field missing on one side compares.
type AbsencePolicy int

const (
	// AbsentAsDefault compares a missing field as its normalized default,
	// so absence and an explicit zero are indistinguishable.
	AbsentAsDefault AbsencePolicy = iota
	// AbsentAsUnknown skips fields that are missing on either side.
	AbsentAsUnknown
)

// String returns the policy name.
func (p AbsencePolicy) String() string {
	if p == AbsentAsUnknown {
		return "unknown"
	}
	return "default"
}

// ParseAbsencePolicy parses "default" or "unknown".
func ParseAbsencePolicy(s string) (AbsencePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return AbsentAsDefault, nil
	case "unknown", "skip":
		return AbsentAsUnknown, nil
	}
	return AbsentAsDefault, errors.NewValidationError("absence", s, "must be default or unknown")
}

// Options configures a Differ.
type Options struct {
	Absence AbsencePolicy
	Ignore  map[string]bool
}

// Option is a functional option for configuring a Differ.
type Option func(*Options)

// Defaults returns the default options.
func Defaults() *Options {
	return &Options{
		Absence: AbsentAsDefault,
		Ignore:  make(map[string]bool),
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAbsencePolicy selects how missing fields compare.
func WithAbsencePolicy(p AbsencePolicy) Option {
	return func(o *Options) {
		o.Absence = p
	}
}

// WithIgnoredFields sets fields to ignore during comparison.
func WithIgnoredFields(fields ...string) Option {
	return func(o *Options) {
		for _, field := range fields {
			o.Ignore[field] = true
		}
	}
}
