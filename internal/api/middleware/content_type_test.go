package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/airdash/airdash/internal/api/middleware"
)

func TestContentTypeJSON_DoesNotOverride(t *testing.T) {
	handler := middleware.ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cities", http.NoBody))

	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestCacheControl(t *testing.T) {
	tests := []struct {
		maxAge time.Duration
		want   string
	}{
		{5 * time.Minute, "private, max-age=300"},
		{0, "no-store"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			handler := middleware.CacheControl(tt.maxAge)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			assert.Equal(t, tt.want, rec.Header().Get("Cache-Control"))
		})
	}
}
