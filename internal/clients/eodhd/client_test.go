package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/VOO.US", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "2026-08-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-08-26", r.URL.Query().Get("to"))
		w.Write([]byte(`[
			{"date":"2026-08-25","open":510.0,"high":515.0,"low":508.0,"close":512.5,"adjusted_close":512.5,"volume":4200000},
			{"date":"2026-08-26","open":512.5,"high":518.0,"low":511.0,"close":517.0,"adjusted_close":517.0,"volume":3900000}
		]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100))

	bars, err := client.GetHistory(context.Background(), "VOO.US", "2026-08-01", "2026-08-26")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "2026-08-25", bars[0].Date)
	assert.Equal(t, 512.5, bars[0].AdjClose)
	assert.Equal(t, int64(3900000), bars[1].Volume)
}

func TestGetHistoryAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL), WithRateLimit(100))

	_, err := client.GetHistory(context.Background(), "VOO.US", "", "")
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
