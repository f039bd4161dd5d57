// Package readresult carries the outcome of a soft-failing read. Reads in
// this system never raise: a failed read answers with its type's safe default
// (empty list, nil, zero record) so a screen degrades to "no data" instead of
// crashing. The envelope keeps the swallowed error alongside the default so a
// caller can still distinguish "confirmed empty" from "failed, unknown state".
package readresult

import apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"

// Result is a read outcome: the value (or its safe default) plus the error
// that was swallowed to produce it, if any.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful read.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degraded wraps a failed read answered with its safe default.
func Degraded[T any](def T, op string, err error) Result[T] {
	return Result[T]{Value: def, Err: apperrors.NewReadDegraded(op, err)}
}

// Degraded reports whether the value is a safe default rather than real data.
func (r Result[T]) Degraded() bool {
	return r.Err != nil
}
