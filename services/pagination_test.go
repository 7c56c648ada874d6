package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, pageSize int
		wantPage       int
		wantSize       int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, -10, 1, DefaultPageSize},
		{1, 20, 1, 20},
		{5, 50, 5, 50},
		{2, 1000, 2, MaxPageSize},
	}
	for _, tc := range cases {
		page, size := NormalizePage(tc.page, tc.pageSize)
		assert.Equal(t, tc.wantPage, page, "page for (%d, %d)", tc.page, tc.pageSize)
		assert.Equal(t, tc.wantSize, size, "size for (%d, %d)", tc.page, tc.pageSize)
	}
}

func TestNewPageTotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 10, 10},
		{101, 10, 11},
	}
	for _, tc := range cases {
		page := NewPage(nil, tc.total, 1, tc.pageSize)
		assert.Equal(t, tc.want, page.TotalPages, "total_pages for total=%d size=%d", tc.total, tc.pageSize)
	}
}
