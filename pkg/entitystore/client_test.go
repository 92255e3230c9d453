package entitystore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/entities/UserProfile", r.URL.Path)
		assert.Equal(t, "-updated_date", r.URL.Query().Get("sort"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1"},{"id":"p2"}]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	records, err := client.List(context.Background(), EntityUserProfile, "-updated_date", 100)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":"p1"}`, string(records[0]))
}

func TestFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/entities/Deal/filter", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, map[string]any{"company_name": "Acme"}, req["where"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"d1","company_name":"Acme"}]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	records, err := client.Filter(context.Background(), EntityDeal, map[string]any{"company_name": "Acme"}, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/entities/Deal", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(body, &fields))
		assert.Equal(t, "Acme", fields["company_name"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"d-new","company_name":"Acme"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	record, err := client.Create(context.Background(), EntityDeal, map[string]any{"company_name": "Acme"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(record, &got))
	assert.Equal(t, "d-new", got["id"])
}

func TestUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/entities/UserProfile/p1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL)
	err := client.Update(context.Background(), EntityUserProfile, "p1", map[string]any{"engagement_state": map[string]any{}})
	assert.NoError(t, err)
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, `{"error":"no such entity"}`, "unexpected status 404"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, "unexpected status 429"},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, "unexpected status 500"},
		{"malformed body", http.StatusOK, `{not json`, "unmarshal response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", srv.URL)
			_, err := client.List(context.Background(), EntityDeal, "", 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRateLimitDisabled(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, WithRateLimit(0))
	for range 5 {
		_, err := client.List(context.Background(), EntityDeal, "", 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, calls)
}
