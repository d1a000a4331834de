// ABOUTME: Tests for the category list handler
// ABOUTME: Verifies caching and degradation to an empty list

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestCategories_CachesUpstreamResponse(t *testing.T) {
	var hits atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "name": "Abstract"},
			{"id": 2, "name": "Portrait"},
		})
	}))
	defer upstream.Close()

	h := newTestHandler(t, upstream.URL)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
		w := httptest.NewRecorder()
		h.Categories(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200", w.Code)
		}

		var resp CategoriesResponse
		decodeBody(t, w, &resp)
		if len(resp.Categories) != 2 || resp.Categories[0].Name != "Abstract" {
			t.Fatalf("Categories = %+v", resp.Categories)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("Upstream hit %d times, want 1 (cached)", hits.Load())
	}
}

func TestCategories_DegradesWhenUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	h := newTestHandler(t, upstream.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	w := httptest.NewRecorder()
	h.Categories(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", w.Code)
	}

	var resp CategoriesResponse
	decodeBody(t, w, &resp)
	if resp.Categories == nil || len(resp.Categories) != 0 {
		t.Errorf("Categories = %v, want empty list", resp.Categories)
	}
	if resp.Error == "" {
		t.Error("Expected a degradation message")
	}
}
