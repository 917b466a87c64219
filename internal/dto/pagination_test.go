package dto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageQueryNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q := PageQuery{}
		q.Normalize()
		require.Equal(t, 1, q.Page)
		require.Equal(t, 20, q.Limit)
	})

	t.Run("caps the limit", func(t *testing.T) {
		q := PageQuery{Page: 3, Limit: 500}
		q.Normalize()
		require.Equal(t, 3, q.Page)
		require.Equal(t, 100, q.Limit)
	})

	t.Run("offset follows page and limit", func(t *testing.T) {
		q := PageQuery{Page: 4, Limit: 25}
		require.Equal(t, 75, q.Offset())
	})
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		total, limit, pages int
	}{
		{total: 0, limit: 20, pages: 0},
		{total: 1, limit: 20, pages: 1},
		{total: 20, limit: 20, pages: 1},
		{total: 21, limit: 20, pages: 2},
		{total: 95, limit: 10, pages: 10},
	}
	for _, tc := range cases {
		p := NewPagination(tc.total, PageQuery{Page: 1, Limit: tc.limit})
		require.Equal(t, tc.pages, p.Pages, "total=%d limit=%d", tc.total, tc.limit)
		require.Equal(t, tc.total, p.Total)
	}
}
