// Package errors provides custom error types for the possync system.
// These errors enable programmatic error checking with errors.Is/As
// and carry enough context to explain a failed run to an operator.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// As is an alias for the standard library errors.As.
var As = errors.As

// Join is an alias for the standard library errors.Join.
var Join = errors.Join

// Common sentinel errors for the possync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyCollection indicates that a required collection loaded zero records
	ErrEmptyCollection = errors.New("empty collection")

	// ErrBackupFailed indicates that the backup taken before a write failed
	ErrBackupFailed = errors.New("backup failed")

	// ErrCircularReference indicates a cycle in a parent chain
	ErrCircularReference = errors.New("circular reference")

	// ErrRemoteUnavailable indicates that the remote catalog could not be reached
	ErrRemoteUnavailable = errors.New("remote catalog unavailable")

	// ErrRateLimited indicates that the remote rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// EmptyCollectionError is returned when a collection that a run requires
// loaded zero records. Reconciling against an empty set usually means the
// path is wrong, so the run stops instead of treating it as a warning.
type EmptyCollectionError struct {
	Collection string
	Path       string
}

// Error implements the error interface
func (e *EmptyCollectionError) Error() string {
	return fmt.Sprintf("%s collection at %s loaded zero records", e.Collection, e.Path)
}

// Is implements errors.Is support
func (e *EmptyCollectionError) Is(target error) bool {
	return target == ErrEmptyCollection
}

// NewEmptyCollectionError creates a new EmptyCollectionError
func NewEmptyCollectionError(collection, path string) *EmptyCollectionError {
	return &EmptyCollectionError{Collection: collection, Path: path}
}

// BackupError represents a failure to take or restore a backup
type BackupError struct {
	Operation string // "backup", "restore"
	Path      string
	Backup    string
	Err       error
}

// Error implements the error interface
func (e *BackupError) Error() string {
	if e.Backup != "" {
		return fmt.Sprintf("%s of %s (backup %s) failed: %v", e.Operation, e.Path, e.Backup, e.Err)
	}
	return fmt.Sprintf("%s of %s failed: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *BackupError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *BackupError) Is(target error) bool {
	return target == ErrBackupFailed
}

// NewBackupError creates a new BackupError
func NewBackupError(operation, path, backup string, err error) *BackupError {
	return &BackupError{
		Operation: operation,
		Path:      path,
		Backup:    backup,
		Err:       err,
	}
}

// Reference kinds reported by ReferenceError.
const (
	RefCircular = "circular_reference"
	RefMissing  = "missing_parent"
	RefDangling = "dangling_reference"
)

// ReferenceError describes a record that points at something that does not
// resolve: a parent chain that loops, a parent that is absent, or a
// category/brand/supplier id with no matching record. These are collected
// and reported, never returned as fatal.
type ReferenceError struct {
	Kind     string // RefCircular, RefMissing, RefDangling
	Resource string // "category", "product"
	ID       string
	Field    string
	Ref      string
	Chain    []string
}

// Error implements the error interface
func (e *ReferenceError) Error() string {
	switch e.Kind {
	case RefCircular:
		return fmt.Sprintf("circular reference for %s %s: %s", e.Resource, e.ID, strings.Join(e.Chain, " -> "))
	case RefMissing:
		return fmt.Sprintf("%s %s has missing parent %s", e.Resource, e.ID, e.Ref)
	default:
		return fmt.Sprintf("%s %s references unknown %s %s", e.Resource, e.ID, e.Field, e.Ref)
	}
}

// Is implements errors.Is support
func (e *ReferenceError) Is(target error) bool {
	if e.Kind == RefCircular {
		return target == ErrCircularReference
	}
	return target == ErrNotFound
}

// NewReferenceError creates a new ReferenceError
func NewReferenceError(kind, resource, id, field, ref string) *ReferenceError {
	return &ReferenceError{
		Kind:     kind,
		Resource: resource,
		ID:       id,
		Field:    field,
		Ref:      ref,
	}
}

// RemoteError represents an error from the remote catalog API
type RemoteError struct {
	Remote     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote error from %s (status %d): %s", e.Remote, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error from %s: %s", e.Remote, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RemoteError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 || e.StatusCode == 0 {
		return target == ErrRemoteUnavailable
	}
	return false
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(remote string, statusCode int, message string) *RemoteError {
	return &RemoteError{
		Remote:     remote,
		StatusCode: statusCode,
		Message:    message,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsEmptyCollection checks if an error is an empty collection error
func IsEmptyCollection(err error) bool {
	return errors.Is(err, ErrEmptyCollection)
}

// IsBackupFailure checks if an error is a backup or restore failure
func IsBackupFailure(err error) bool {
	return errors.Is(err, ErrBackupFailed)
}

// IsCircularReference checks if an error is a circular reference error
func IsCircularReference(err error) bool {
	return errors.Is(err, ErrCircularReference)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "ndjson", "yaml"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, line int, err error) *ParseError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{
		Format:  format,
		File:    file,
		Line:    line,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "load", "save", "apply", "push"
	Resource  string // "products", "categories", "report"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, line int, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, line, err)
}

// WrapRemote wraps an error as a RemoteError
func WrapRemote(remote string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{
		Remote:     remote,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
