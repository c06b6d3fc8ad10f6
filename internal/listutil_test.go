package internal

import (
	"net/http/httptest"
	"testing"
)

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		limit  int
		offset int
		q      string
		sort   string
	}{
		{"defaults", "/vendors", 50, 0, "", ""},
		{"explicit", "/vendors?limit=10&offset=20&q=acme&sort=-name", 10, 20, "acme", "-name"},
		{"limit capped", "/vendors?limit=9999", 200, 0, "", ""},
		{"garbage ignored", "/vendors?limit=abc&offset=-5", 50, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p := parseListParams(r)
			if p.limit != tt.limit || p.offset != tt.offset || p.q != tt.q || p.sort != tt.sort {
				t.Fatalf("got %+v", p)
			}
		})
	}
}

func TestBuildOrderBy(t *testing.T) {
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"created_at": "created_at",
	}

	tests := []struct {
		name     string
		sort     string
		expected string
	}{
		{"empty defaults to id", "", " ORDER BY id ASC"},
		{"single asc", "name", " ORDER BY name ASC"},
		{"single desc", "-name", " ORDER BY name DESC"},
		{"multiple", "name,-created_at", " ORDER BY name ASC, created_at DESC"},
		{"unknown key dropped", "name,evil;drop", " ORDER BY name ASC"},
		{"all unknown falls back", "evil", " ORDER BY id ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildOrderBy(tt.sort, allowed); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
	empty := "   "
	if nullIfEmpty(&empty) != nil {
		t.Fatal("expected nil for whitespace input")
	}
	val := "x"
	if nullIfEmpty(&val) != "x" {
		t.Fatal("expected value passed through")
	}
}
