package tavilyclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/explorer-guide/internal/errs"
)

func TestSearchSendsRequestAndMapsResults(t *testing.T) {
	var got searchRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"title": "Trail Ridge Road status", "url": "https://nps.gov/romo", "content": "Open for the season."},
			{"title": "Snow report", "url": "https://example.com/snow", "content": "Fresh powder."}
		]}`))
	}))
	defer srv.Close()

	a := NewAdapter("tvly-test", WithBaseURL(srv.URL+"/"))
	records, err := a.Search(context.Background(), "Trail Ridge Road open", 3)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	if auth != "Bearer tvly-test" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if got.Query != "Trail Ridge Road open" || got.MaxResults != 3 || got.SearchDepth != "basic" {
		t.Fatalf("unexpected request body: %+v", got)
	}
	if len(records) != 2 || records[0].URL != "https://nps.gov/romo" || records[1].Content != "Fresh powder." {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestSearchStatusErrors(t *testing.T) {
	cases := []struct {
		status    int
		transient bool
	}{
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		}))

		_, err := NewAdapter("k", WithBaseURL(srv.URL)).Search(context.Background(), "q", 3)
		srv.Close()

		var ext *errs.ExternalServiceError
		if !errors.As(err, &ext) {
			t.Fatalf("status %d: expected ExternalServiceError, got %v", tc.status, err)
		}
		if ext.Transient != tc.transient {
			t.Fatalf("status %d: transient = %v, want %v", tc.status, ext.Transient, tc.transient)
		}
	}
}

func TestSearchEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	records, err := NewAdapter("k", WithBaseURL(srv.URL)).Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
