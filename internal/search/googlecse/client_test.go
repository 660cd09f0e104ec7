package googlecse

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/search"
)

func TestClient_Search(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		response   interface{}
		statusCode int
		wantErr    error
	}{
		{
			name: "successful search",
			response: googleResponse{
				Items: []googleItem{
					{Title: "Office relocation guide", Link: "https://example.com", Snippet: "How to move an office", DisplayLink: "example.com"},
				},
			},
			statusCode: http.StatusOK,
			wantErr:    nil,
		},
		{
			name:       "empty results",
			response:   googleResponse{},
			statusCode: http.StatusOK,
			wantErr:    search.ErrEmptyResults,
		},
		{
			name:       "unauthorized",
			response:   map[string]string{"error": "unauthorized"},
			statusCode: http.StatusUnauthorized,
			wantErr:    search.ErrUnauthorized,
		},
		{
			name:       "forbidden maps to unauthorized",
			response:   map[string]string{"error": "daily limit exceeded"},
			statusCode: http.StatusForbidden,
			wantErr:    search.ErrUnauthorized,
		},
		{
			name:       "rate limit",
			response:   map[string]string{"error": "rate limit"},
			statusCode: http.StatusTooManyRequests,
			wantErr:    search.ErrRateLimit,
		},
		{
			name:       "bad request",
			response:   map[string]string{"error": "bad request"},
			statusCode: http.StatusBadRequest,
			wantErr:    search.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := New(Config{
				APIKey:   "test-key",
				EngineID: "test-cx",
				BaseURL:  server.URL,
				Timeout:  5 * time.Second,
			}, logger)

			resp, err := client.Search(context.Background(), search.Request{Query: "office move"})

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Search() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && len(resp.Results) == 0 {
				t.Error("Search() returned no results")
			}
		})
	}
}

func TestClient_SearchBuildsQuery(t *testing.T) {
	var gotQuery, gotNum, gotRestrict, gotCx string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = q.Get("q")
		gotNum = q.Get("num")
		gotRestrict = q.Get("dateRestrict")
		gotCx = q.Get("cx")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(googleResponse{
			Items: []googleItem{{Title: "T", Link: "https://example.com"}},
		})
	}))
	defer server.Close()

	client := New(Config{APIKey: "k", EngineID: "cx-1", BaseURL: server.URL}, zap.NewNop())

	_, err := client.Search(context.Background(), search.Request{
		Query:      "relocation checklist",
		MaxResults: 25,
		Sites:      []string{"example.com", "example.org"},
		TimeRange:  "month",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery != "relocation checklist (site:example.com OR site:example.org)" {
		t.Errorf("q = %q", gotQuery)
	}
	// потолок API
	if gotNum != "10" {
		t.Errorf("num = %q, want 10", gotNum)
	}
	if gotRestrict != "m1" {
		t.Errorf("dateRestrict = %q, want m1", gotRestrict)
	}
	if gotCx != "cx-1" {
		t.Errorf("cx = %q, want cx-1", gotCx)
	}
}

func TestClient_SearchRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(googleResponse{
			Items: []googleItem{{Title: "T", Link: "https://example.com"}},
		})
	}))
	defer server.Close()

	client := New(Config{APIKey: "k", EngineID: "cx", BaseURL: server.URL}, zap.NewNop())

	resp, err := client.Search(context.Background(), search.Request{Query: "retry"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if len(resp.Results) != 1 {
		t.Errorf("got %d results, want 1", len(resp.Results))
	}
}

func TestClient_SearchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := New(Config{
		APIKey:   "k",
		EngineID: "cx",
		BaseURL:  server.URL,
		Timeout:  100 * time.Millisecond,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, search.Request{Query: "slow"})
	if err == nil {
		t.Error("Search() expected timeout error")
	}
}
