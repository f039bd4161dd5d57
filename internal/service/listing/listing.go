// Package listing implements the index-fallback read policy shared by every
// ordered, role-scoped list: when the ordered form of a query is rejected
// because the store lacks the composite index, the same filter is re-issued
// without ordering and the rows are sorted in memory by creation time. The
// system must not show an empty screen just because an index was not
// provisioned; the extra round-trip is the accepted cost.
package listing

import (
	"context"
	"sort"
	"time"

	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
)

// Lister fetches one scoped list; ordered selects the sorted form.
type Lister[T any] func(ctx context.Context, ordered bool) ([]T, error)

// CreatedAt extracts the sort key; nil sorts last.
type CreatedAt[T any] func(T) *time.Time

// OrderedWithFallback runs the ordered read, retrying unordered plus an
// in-memory descending sort when the ordered form fails on a missing index.
// It reports whether the fallback path was taken. Any other error passes
// through for the caller's swallow policy to handle.
func OrderedWithFallback[T any](ctx context.Context, list Lister[T], createdAt CreatedAt[T]) ([]T, bool, error) {
	items, err := list(ctx, true)
	if err == nil {
		return items, false, nil
	}
	if !apperrors.IsMissingIndex(err) {
		return nil, false, err
	}

	items, err = list(ctx, false)
	if err != nil {
		return nil, true, err
	}
	SortCreatedDesc(items, createdAt)
	return items, true, nil
}

// SortCreatedDesc sorts newest first, keeping records without a timestamp at
// the end. The sort is stable so equal keys keep their store order.
func SortCreatedDesc[T any](items []T, createdAt CreatedAt[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := createdAt(items[i]), createdAt(items[j])
		if ti == nil {
			return false
		}
		if tj == nil {
			return true
		}
		return ti.After(*tj)
	})
}
