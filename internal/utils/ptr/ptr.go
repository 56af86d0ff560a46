// Package ptr holds small helpers for the optional fields of catalog records.
package ptr

import "time"

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// Deref returns the pointed-to value, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Int64 creates a pointer to the given int64 value.
func Int64(i int64) *int64 {
	return &i
}

// Time creates a pointer to the given time.
func Time(t time.Time) *time.Time {
	return &t
}

// String creates a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
