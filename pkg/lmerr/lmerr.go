// Package lmerr defines the error kinds shared across Lightmetrica packages
// (spec.md §7) and the pre-render renderability check.
package lmerr

import (
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	// Unsupported means the scene lacks a primitive it needs to render
	// (no camera, no light, no accel).
	Unsupported Kind = iota
	// IOError means an asset failed to load.
	IOError
	// InvalidArgument means a config value was malformed or out of range.
	InvalidArgument
	// NotFound means an asset-catalog lookup failed to resolve a name.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case IOError:
		return "io_error"
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every Lightmetrica package returns.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Wrap creates an Error of the given kind that wraps a lower-level cause,
// e.g. an *os.PathError from a failed asset load.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// Kind returns the error's kind, for use with a type switch or direct comparison.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Renderable is the minimal set of checks require_renderable performs before
// a render() call, per spec.md §7.
type Renderable interface {
	HasCamera() bool
	HasLight() bool
	HasAccel() bool
}

// RequireRenderable fails with a single Unsupported error listing every
// missing element, rather than failing fast on the first one, so a driver
// sees the whole problem at once.
func RequireRenderable(s Renderable) error {
	var missing []string
	if !s.HasCamera() {
		missing = append(missing, "camera")
	}
	if !s.HasLight() {
		missing = append(missing, "light")
	}
	if !s.HasAccel() {
		missing = append(missing, "acceleration structure")
	}
	if len(missing) == 0 {
		return nil
	}
	return New(Unsupported, "scene is missing: "+strings.Join(missing, ", "))
}
