package paging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emurenMRz/newsview/internal/paging"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name   string
		page   int64
		bounds paging.Bounds
		want   paging.Window
	}{
		{
			name:   "first page",
			page:   1,
			bounds: paging.Bounds{First: 1, Last: 100},
			want:   paging.Window{Page: 1, TotalPages: 4, Low: 76, High: 100},
		},
		{
			name:   "last page clamps low to first",
			page:   4,
			bounds: paging.Bounds{First: 1, Last: 100},
			want:   paging.Window{Page: 4, TotalPages: 4, Low: 1, High: 25},
		},
		{
			name:   "beyond last page clamps to last page",
			page:   5,
			bounds: paging.Bounds{First: 1, Last: 100},
			want:   paging.Window{Page: 4, TotalPages: 4, Low: 1, High: 25},
		},
		{
			name:   "zero page means first",
			page:   0,
			bounds: paging.Bounds{First: 1, Last: 100},
			want:   paging.Window{Page: 1, TotalPages: 4, Low: 76, High: 100},
		},
		{
			name:   "partial last page",
			page:   2,
			bounds: paging.Bounds{First: 10, Last: 40},
			want:   paging.Window{Page: 2, TotalPages: 2, Low: 10, High: 15},
		},
		{
			name:   "single article",
			page:   1,
			bounds: paging.Bounds{First: 7, Last: 7},
			want:   paging.Window{Page: 1, TotalPages: 1, Low: 7, High: 7},
		},
		{
			name:   "empty group",
			page:   3,
			bounds: paging.Bounds{First: 5, Last: 4},
			want:   paging.Window{Page: 1, TotalPages: 1, Empty: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, paging.Plan(tt.page, tt.bounds))
		})
	}
}

func TestWindowNavigation(t *testing.T) {
	b := paging.Bounds{First: 1, Last: 100}

	first := paging.Plan(1, b)
	require.False(t, first.HasPrev())
	require.True(t, first.HasNext())

	last := paging.Plan(4, b)
	require.True(t, last.HasPrev())
	require.False(t, last.HasNext())

	empty := paging.Plan(1, paging.Bounds{First: 5, Last: 4})
	require.False(t, empty.HasPrev())
	require.False(t, empty.HasNext())
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{raw: "", want: 1},
		{raw: "3", want: 3},
		{raw: " 2 ", want: 2},
		{raw: "0", want: 1},
		{raw: "-4", want: 1},
		{raw: "abc", want: 1},
		{raw: "1.5", want: 1},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, paging.ParsePage(tt.raw), "raw %q", tt.raw)
	}
}
