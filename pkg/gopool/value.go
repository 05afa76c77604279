// ============================================================================
// gopool Value - Type-Erased Single-Slot Container
// ============================================================================
//
// Package: pkg/gopool
// File: value.go
// Function: Holds exactly one value of an arbitrary type so a Task can
//   return anything without the Pool knowing the concrete type up front.
//
// Design Pattern:
//   The source (a C++ thread pool) erases the type behind a virtual base
//   class pair (Base/Derive<T>) and checks the type at extraction time via
//   dynamic_cast. Go already has a type-erased container in the standard
//   library — the empty interface — so Value is a thin wrapper around `any`
//   with a generic, checked ExtractValue instead of a dynamic_cast.
//
// Move semantics:
//   The source's Any is move-only; copying it is deleted. Go has no
//   move-only types, so Value is a plain struct. Callers are expected to
//   treat extraction as single-use: ExtractValue is the only way to read
//   the payload out, and nothing re-reads a Value after extracting it.
//
// ============================================================================

package gopool

import "fmt"

// Value is a type-erased, single-use container for a Task's return value.
// The empty sentinel returned by a poisoned Result is built by emptyValue;
// the zero Value is not that sentinel (its IsEmpty reports false).
type Value struct {
	v     any
	empty bool
}

// NewValue erases the concrete type of v and takes ownership of it.
func NewValue[T any](v T) Value {
	return Value{v: v}
}

// emptyValue is the sentinel returned by Result.Get when the handle is
// invalid. ExtractValue on it fails with ErrTypeMismatch.
func emptyValue() Value {
	return Value{empty: true}
}

// IsEmpty reports whether v is the sentinel produced by a poisoned Result.
func (v Value) IsEmpty() bool {
	return v.empty
}

// ExtractValue returns the value held by v if its dynamic type matches T.
// Extraction is checked, never at insertion: the Pool is type-unaware
// end to end, so a mismatch can only be discovered here.
func ExtractValue[T any](v Value) (T, error) {
	var zero T
	if v.empty {
		return zero, fmt.Errorf("gopool: extract from empty value: %w", ErrTypeMismatch)
	}
	t, ok := v.v.(T)
	if !ok {
		return zero, fmt.Errorf("gopool: stored type %T does not match requested type %T: %w", v.v, zero, ErrTypeMismatch)
	}
	return t, nil
}
