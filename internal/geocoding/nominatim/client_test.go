package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	// High rate limit so tests do not wait on the OSM budget.
	return NewClient(url, "test@slanup.com", WithRateLimit(1000))
}

func TestSearch(t *testing.T) {
	var gotUserAgent, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"place_id": 1, "lat": "51.5074", "lon": "-0.1278", "display_name": "London, UK"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "London", SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "51.5074", results[0].Lat)
	assert.Equal(t, "London, UK", results[0].DisplayName)
	assert.Equal(t, "London", gotQuery)
	assert.Contains(t, gotUserAgent, "test@slanup.com")
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := newTestClient("http://unused.invalid")
	_, err := client.Search(context.Background(), "", SearchOptions{})
	require.Error(t, err)
}

func TestSearch_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "nowhere at all", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"place_id": 1, "lat": "0", "lon": "0", "display_name": "x"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	results, err := client.Search(context.Background(), "x", SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), "x", SearchOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "51.507400", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"place_id": 1, "lat": "51.5074", "lon": "-0.1278", "display_name": "Trafalgar Square, London"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Reverse(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, "Trafalgar Square, London", result.DisplayName)
}

func TestReverse_InvalidCoordinates(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	_, err := client.Reverse(context.Background(), 91, 0)
	require.Error(t, err)
	_, err = client.Reverse(context.Background(), 0, -181)
	require.Error(t, err)
}
