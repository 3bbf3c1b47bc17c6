package services

import "testing"

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        PageRequest
		wantPage  int
		wantLimit int
	}{
		{"zero values", PageRequest{}, 1, 10},
		{"negative", PageRequest{Page: -3, Limit: -1}, 1, 10},
		{"over cap", PageRequest{Page: 2, Limit: 500}, 2, 100},
		{"in range", PageRequest{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", got.Page, got.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	p := PageRequest{Page: 3, Limit: 10}
	if p.Offset() != 20 {
		t.Fatalf("expected offset 20, got %d", p.Offset())
	}
}

func TestNewPageInfo(t *testing.T) {
	cases := []struct {
		name      string
		limit     int
		total     int64
		wantPages int
	}{
		{"exact", 10, 30, 3},
		{"remainder", 10, 25, 3},
		{"empty", 10, 0, 0},
		{"single", 10, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := NewPageInfo(PageRequest{Page: 1, Limit: tc.limit}, tc.total)
			if info.TotalPages != tc.wantPages {
				t.Fatalf("total=%d limit=%d: got %d pages, want %d", tc.total, tc.limit, info.TotalPages, tc.wantPages)
			}
		})
	}
}
