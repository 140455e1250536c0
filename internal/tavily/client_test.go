package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q", got)
		}

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if req.Query != "sagemaker savings plans" {
			t.Errorf("query = %q", req.Query)
		}
		if req.MaxResults != 3 {
			t.Errorf("max_results = %d, want 3", req.MaxResults)
		}

		json.NewEncoder(w).Encode(SearchResponse{
			Query:  req.Query,
			Answer: "Savings Plans discount SageMaker usage.",
			Results: []SearchResult{
				{Title: "SageMaker Savings Plans", URL: "https://example.com", Content: "details", Score: 0.97},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-key")
	client.baseURL = server.URL

	resp, err := client.Search(context.Background(), SearchRequest{
		Query:      "sagemaker savings plans",
		MaxResults: 3,
	})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if resp.Answer == "" {
		t.Error("expected an answer in the response")
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "SageMaker Savings Plans" {
		t.Errorf("unexpected results: %#v", resp.Results)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key")
	client.baseURL = server.URL

	_, err := client.Search(context.Background(), SearchRequest{Query: "q"})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should include status code: %v", err)
	}
}

func TestSearchBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient("key")
	client.baseURL = server.URL

	if _, err := client.Search(context.Background(), SearchRequest{Query: "q"}); err == nil {
		t.Fatal("expected error for malformed response body")
	}
}
