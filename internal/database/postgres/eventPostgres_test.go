package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 {
	return &v
}

// TestBuildSearchQueryFilters тестирует сборку условий фильтрации
func TestBuildSearchQueryFilters(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		filter        *SearchFilter
		wantContains  []string
		wantArgsCount int
	}{
		{
			name: "no filters",
			filter: &SearchFilter{
				Sort: SortRecent,
				Page: 1,
				Size: 20,
			},
			wantContains:  []string{"ORDER BY e.created_at DESC", "LIMIT $1 OFFSET $2"},
			wantArgsCount: 2,
		},
		{
			name: "text search uses one argument for three columns",
			filter: &SearchFilter{
				Query: "guitar",
				Sort:  SortRecent,
				Page:  1,
				Size:  20,
			},
			wantContains: []string{
				"(e.title ILIKE $1 OR e.description ILIKE $1 OR e.host_name ILIKE $1)",
				"LIMIT $2 OFFSET $3",
			},
			wantArgsCount: 3,
		},
		{
			name: "category and price range",
			filter: &SearchFilter{
				Category: "Music",
				PriceMin: int64Ptr(1000),
				PriceMax: int64Ptr(5000),
				Sort:     SortRecent,
				Page:     1,
				Size:     20,
			},
			wantContains: []string{
				"e.category = $1",
				"e.price_minor >= $2",
				"e.price_minor <= $3",
				"LIMIT $4 OFFSET $5",
			},
			wantArgsCount: 5,
		},
		{
			name: "all filters combined",
			filter: &SearchFilter{
				Query:    "yoga",
				Category: "Fitness",
				PriceMin: int64Ptr(0),
				PriceMax: int64Ptr(10000),
				Sort:     SortPriceAsc,
				Page:     2,
				Size:     10,
			},
			wantContains: []string{
				"(e.title ILIKE $1 OR e.description ILIKE $1 OR e.host_name ILIKE $1)",
				"e.category = $2",
				"e.price_minor >= $3",
				"e.price_minor <= $4",
				"ORDER BY e.price_minor ASC, e.created_at DESC",
				"LIMIT $5 OFFSET $6",
			},
			wantArgsCount: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, countQuery, args := buildSearchQuery(tt.filter, now)

			for _, fragment := range tt.wantContains {
				assert.Contains(t, query, fragment)
			}
			assert.Len(t, args, tt.wantArgsCount)
			assert.Contains(t, countQuery, "SELECT COUNT(*) FROM events e")
			assert.NotContains(t, countQuery, "LIMIT")
		})
	}
}

// TestBuildSearchQuerySorts тестирует варианты сортировки
func TestBuildSearchQuerySorts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sort      string
		wantOrder string
	}{
		{
			name:      "recent",
			sort:      SortRecent,
			wantOrder: "ORDER BY e.created_at DESC",
		},
		{
			name:      "price ascending",
			sort:      SortPriceAsc,
			wantOrder: "ORDER BY e.price_minor ASC, e.created_at DESC",
		},
		{
			name:      "price descending",
			sort:      SortPriceDesc,
			wantOrder: "ORDER BY e.price_minor DESC, e.created_at DESC",
		},
		{
			name:      "unrated events sink to the bottom",
			sort:      SortRating,
			wantOrder: "ORDER BY e.rating_avg DESC NULLS LAST, e.created_at DESC",
		},
		{
			name:      "popularity",
			sort:      SortPopularity,
			wantOrder: "ORDER BY COALESCE(p.recent_bookings, 0) DESC, e.created_at DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := &SearchFilter{Sort: tt.sort, Page: 1, Size: 20, WindowDays: 30}
			query, _, _ := buildSearchQuery(filter, now)
			assert.Contains(t, query, tt.wantOrder)
		})
	}
}

// TestBuildSearchQueryPopularityWindow тестирует окно подсчета недавних броней
func TestBuildSearchQueryPopularityWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	filter := &SearchFilter{Sort: SortPopularity, Page: 1, Size: 20, WindowDays: 30}
	query, countQuery, args := buildSearchQuery(filter, now)

	require.Len(t, args, 3)
	cutoff, ok := args[0].(time.Time)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -30), cutoff)

	assert.Contains(t, query, "b.status = 'CONFIRMED'")
	assert.Contains(t, query, "b.booked_at >= $1")
	// Подзапрос популярности не участвует в подсчете total
	assert.NotContains(t, countQuery, "recent_bookings")
}

// TestBuildSearchQueryPagination тестирует вычисление смещения страницы
func TestBuildSearchQueryPagination(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		page       int
		size       int
		wantLimit  int
		wantOffset int
	}{
		{
			name:       "first page",
			page:       1,
			size:       20,
			wantLimit:  20,
			wantOffset: 0,
		},
		{
			name:       "third page",
			page:       3,
			size:       10,
			wantLimit:  10,
			wantOffset: 20,
		},
		{
			name:       "page below one treated as first",
			page:       0,
			size:       20,
			wantLimit:  20,
			wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := &SearchFilter{Sort: SortRecent, Page: tt.page, Size: tt.size}
			query, _, args := buildSearchQuery(filter, now)

			require.Len(t, args, 2)
			assert.Equal(t, tt.wantLimit, args[0])
			assert.Equal(t, tt.wantOffset, args[1])
			assert.True(t, strings.Contains(query, "LIMIT $1 OFFSET $2"))
		})
	}
}
