package images

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		AccessKey:          "test-key",
		Timeout:            2 * time.Second,
		RetryMaxAttempts:   2,
		RetryInitialDelay:  time.Millisecond,
		CBEnabled:          true,
		CBFailureThreshold: 5,
	})
	client.endpoint = srv.URL
	return client
}

func TestSearchReturnsProviderResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "penang street food tourism", r.URL.Query().Get("query"))
		assert.Equal(t, "3", r.URL.Query().Get("per_page"))
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		assert.Equal(t, "high", r.URL.Query().Get("content_filter"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(unsplashSearchResponse{
			Total: 1,
			Results: []unsplashPhoto{{
				Description:    "hawker stalls at dusk",
				AltDescription: "penang hawker food",
				URLs:           unsplashURLs{Regular: "https://images.example.com/1.jpg"},
				Links:          unsplashLinks{DownloadLocation: "https://api.example.com/download/1"},
				User:           unsplashUser{Name: "Jane Lee", Username: "janelee"},
			}},
		})
	})

	results := client.Search(context.Background(), "Penang street food", 3)

	require.Len(t, results, 1)
	assert.Equal(t, "https://images.example.com/1.jpg", results[0].URL)
	assert.Equal(t, "penang hawker food", results[0].Title)
	assert.Equal(t, "Unsplash", results[0].Source)
	assert.Equal(t, "Jane Lee", results[0].PhotographerName)
	assert.Equal(t, "https://unsplash.com/@janelee", results[0].PhotographerURL)
	assert.Equal(t, "https://api.example.com/download/1", results[0].DownloadURL)
}

func TestSearchFillsAttributionDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(unsplashSearchResponse{
			Results: []unsplashPhoto{{
				URLs: unsplashURLs{Regular: "https://images.example.com/2.jpg"},
			}},
		})
	})

	results := client.Search(context.Background(), "kuala lumpur skyline", 1)

	require.Len(t, results, 1)
	assert.Equal(t, "Malaysia Tourism", results[0].Title)
	assert.Equal(t, "Unknown Photographer", results[0].PhotographerName)
	assert.Equal(t, "https://unsplash.com", results[0].PhotographerURL)
}

func TestSearchFallsBackOnProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	results := client.Search(context.Background(), "kuala lumpur", 3)

	require.NotEmpty(t, results)
	assert.Equal(t, "Curated Collection", results[0].Source)
}

func TestSearchWithoutAccessKeyUsesFallback(t *testing.T) {
	client := NewClient(Config{})

	results := client.Search(context.Background(), "penang", 3)

	require.NotEmpty(t, results)
	assert.Equal(t, "Curated Collection", results[0].Source)
}

func TestTrackDownload(t *testing.T) {
	var tracked bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracked = true
		assert.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{AccessKey: "test-key"})

	require.NoError(t, client.TrackDownload(context.Background(), srv.URL+"/download/1"))
	assert.True(t, tracked)
}

func TestTrackDownloadWithoutKey(t *testing.T) {
	client := NewClient(Config{})

	err := client.TrackDownload(context.Background(), "https://example.com/download")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
