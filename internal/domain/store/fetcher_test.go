package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("EG,Nome\n1-1,A\n"))
	}))
	defer srv.Close()

	text, err := NewHTTPFetcher(srv.URL, time.Second, srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EG,Nome\n1-1,A\n", text)
}

func TestHTTPFetcher_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>quota</html>", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, time.Second, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPFetcher(srv.URL, 20*time.Millisecond, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.csv")
	require.NoError(t, os.WriteFile(path, []byte("EG\n1-1"), 0o644))

	text, err := NewFileFetcher(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EG\n1-1", text)

	_, err = NewFileFetcher(filepath.Join(t.TempDir(), "missing.csv")).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
