package httpserver

import (
	"net/url"
	"testing"
)

func FuzzParseListFilters(f *testing.F) {
	seeds := []string{
		"page=2&limit=25",
		"page=abc",
		"limit=200",
		"creator=7a9f9a6e-0000-0000-0000-000000000000",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		filters, err := parseListFilters(values)
		if err != nil {
			return
		}
		if filters.Page < 1 {
			t.Fatalf("accepted page %d", filters.Page)
		}
		if filters.Limit < 1 || filters.Limit > 100 {
			t.Fatalf("accepted limit %d", filters.Limit)
		}
	})
}
