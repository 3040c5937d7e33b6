package models

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds reported by the mesh operations. Every error returned by the
// toolkit wraps exactly one of them, so callers can test with errors.Is.
var (
	// ErrFormat reports a malformed or inconsistent mesh or scalar file
	ErrFormat = errors.New("format error")

	// ErrCardinalityMismatch reports two inputs that must be positionally
	// aligned but have different lengths
	ErrCardinalityMismatch = errors.New("cardinality mismatch")

	// ErrDegenerateGeometry reports zero-area triangles, zero-length normals
	// or vertices without neighbors
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrDomain reports a value outside the valid input range of a function
	ErrDomain = errors.New("domain error")

	// ErrUnimplementedVariant reports an explicitly unsupported mode
	ErrUnimplementedVariant = errors.New("unimplemented variant")
)

// Error carries the location and offending value of a failure
type Error struct {
	// Kind is one of the Err* sentinels above
	Kind error

	// Op names the operation that detected the problem
	Op string

	// Index is the vertex, triangle or line index involved, or -1
	Index int

	// Value is the offending value, NaN when not applicable
	Value float64

	// Msg is a short human readable description
	Msg string
}

// NewError creates an Error of the given kind
func NewError(kind error, op string, index int, value float64, msg string) *Error {
	return &Error{Kind: kind, Op: op, Index: index, Value: value, Msg: msg}
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Index >= 0 {
		s += fmt.Sprintf(" at index %d", e.Index)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if !math.IsNaN(e.Value) {
		s += fmt.Sprintf(" (value %g)", e.Value)
	}
	return s
}

// Unwrap exposes the error kind to errors.Is
func (e *Error) Unwrap() error { return e.Kind }

// CheckCardinality returns ErrCardinalityMismatch when got differs from want
func CheckCardinality(op, what string, want, got int) error {
	if want == got {
		return nil
	}
	return NewError(ErrCardinalityMismatch, op, -1, float64(got),
		fmt.Sprintf("%s has %d entries, expected %d", what, got, want))
}
