package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, st Store, ordered bool) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		n, err := st.Count(ctx, "empty", nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		docs, err := st.Find(ctx, "empty", nil, 10)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("insert assigns distinct ids", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			id, err := st.Insert(ctx, "things", Document{
				IDField:    "caller-supplied",
				"title":    fmt.Sprintf("thing-%d", i),
				"category": map[bool]string{true: "even", false: "odd"}[i%2 == 0],
				"price":    float64(i) + 0.5,
			})
			require.NoError(t, err)
			require.NotEmpty(t, id)
			assert.NotEqual(t, "caller-supplied", id)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
		n, err := st.Count(ctx, "things", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 5, n)
	})

	t.Run("find honours limit and order", func(t *testing.T) {
		docs, err := st.Find(ctx, "things", Filter{}, 3)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for i, d := range docs {
			assert.NotEmpty(t, d[IDField])
			assert.Contains(t, d, "created_at")
			if ordered {
				assert.Equal(t, fmt.Sprintf("thing-%d", i), d["title"])
			}
		}
		all, err := st.Find(ctx, "things", nil, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("filter by field", func(t *testing.T) {
		n, err := st.Count(ctx, "things", Filter{"category": "even"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
		docs, err := st.Find(ctx, "things", Filter{"category": "odd"}, 10)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		for _, d := range docs {
			assert.Equal(t, "odd", d["category"])
		}
	})

	t.Run("numeric filter matches by value", func(t *testing.T) {
		for _, qty := range []int{3, 4} {
			_, err := st.Insert(ctx, "stock", Document{"qty": qty})
			require.NoError(t, err)
		}
		for _, want := range []any{3, int64(3), 3.0} {
			n, err := st.Count(ctx, "stock", Filter{"qty": want})
			require.NoError(t, err)
			assert.EqualValues(t, 1, n, "filter %T", want)
			docs, err := st.Find(ctx, "stock", Filter{"qty": want}, 0)
			require.NoError(t, err)
			assert.Len(t, docs, 1, "filter %T", want)
		}
	})

	t.Run("collections and ping", func(t *testing.T) {
		require.NoError(t, st.Ping(ctx))
		names, err := st.Collections(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "things")
	})
}
