package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Majedzeyad/cancare-api/pkg/errors"
)

type row struct {
	name    string
	created *time.Time
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func rowCreatedAt(r row) *time.Time { return r.created }

func TestOrderedPathUsedWhenIndexExists(t *testing.T) {
	var sawOrdered bool
	list := func(ctx context.Context, ordered bool) ([]row, error) {
		sawOrdered = ordered
		return []row{{name: "a"}}, nil
	}

	items, fellBack, err := OrderedWithFallback(context.Background(), list, rowCreatedAt)

	require.NoError(t, err)
	assert.False(t, fellBack)
	assert.True(t, sawOrdered)
	assert.Len(t, items, 1)
}

func TestFallbackSortsDescendingOnMissingIndex(t *testing.T) {
	list := func(ctx context.Context, ordered bool) ([]row, error) {
		if ordered {
			return nil, apperrors.NewMissingIndex("lab_results", errors.New("no composite index"))
		}
		return []row{
			{name: "old", created: ts("2024-01-01T00:00:00Z")},
			{name: "new", created: ts("2024-06-01T00:00:00Z")},
			{name: "mid", created: ts("2024-03-01T00:00:00Z")},
		}, nil
	}

	items, fellBack, err := OrderedWithFallback(context.Background(), list, rowCreatedAt)

	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.Equal(t, "new", items[0].name)
	assert.Equal(t, "mid", items[1].name)
	assert.Equal(t, "old", items[2].name)
}

func TestFallbackPutsMissingTimestampsLast(t *testing.T) {
	list := func(ctx context.Context, ordered bool) ([]row, error) {
		if ordered {
			return nil, apperrors.NewMissingIndex("posts", errors.New("no composite index"))
		}
		return []row{
			{name: "no-ts-1"},
			{name: "dated", created: ts("2024-03-01T00:00:00Z")},
			{name: "no-ts-2"},
		}, nil
	}

	items, _, err := OrderedWithFallback(context.Background(), list, rowCreatedAt)

	require.NoError(t, err)
	assert.Equal(t, "dated", items[0].name)
	// Stable sort keeps the relative order of undated rows.
	assert.Equal(t, "no-ts-1", items[1].name)
	assert.Equal(t, "no-ts-2", items[2].name)
}

func TestNonIndexErrorsPassThrough(t *testing.T) {
	cause := errors.New("connection reset")
	calls := 0
	list := func(ctx context.Context, ordered bool) ([]row, error) {
		calls++
		return nil, cause
	}

	_, fellBack, err := OrderedWithFallback(context.Background(), list, rowCreatedAt)

	assert.ErrorIs(t, err, cause)
	assert.False(t, fellBack)
	assert.Equal(t, 1, calls)
}

func TestFallbackErrorPropagates(t *testing.T) {
	cause := errors.New("timeout")
	list := func(ctx context.Context, ordered bool) ([]row, error) {
		if ordered {
			return nil, apperrors.NewMissingIndex("override_requests", errors.New("no composite index"))
		}
		return nil, cause
	}

	_, fellBack, err := OrderedWithFallback(context.Background(), list, rowCreatedAt)

	assert.True(t, fellBack)
	assert.ErrorIs(t, err, cause)
}

func TestSortCreatedDescIsStableForEqualKeys(t *testing.T) {
	same := ts("2024-03-01T00:00:00Z")
	items := []row{
		{name: "first", created: same},
		{name: "second", created: same},
	}

	SortCreatedDesc(items, rowCreatedAt)

	assert.Equal(t, "first", items[0].name)
	assert.Equal(t, "second", items[1].name)
}
