// Package e2etest runs the sheet-to-reply flow end to end over a local CSV export.
package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/raiox-score/internal/domain/chat"
	chathandler "github.com/FACorreiaa/raiox-score/internal/domain/chat/handler"
	"github.com/FACorreiaa/raiox-score/internal/domain/sheet"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	storehandler "github.com/FACorreiaa/raiox-score/internal/domain/store/handler"
	"github.com/FACorreiaa/raiox-score/pkg/httpserver"
	"github.com/FACorreiaa/raiox-score/pkg/metrics"
	"github.com/FACorreiaa/raiox-score/pkg/storage"
)

var sheetPath = filepath.Join("testdata", "raiox.csv")

type chatResponse struct {
	Text   string          `json:"resposta"`
	Card   json.RawMessage `json:"card"`
	Intent string          `json:"intent"`
	EG     string          `json:"eg"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCache(t *testing.T, dir string) *store.SnapshotCache {
	t.Helper()
	st, err := storage.New(&storage.Config{Type: storage.StorageTypeLocal, LocalPath: dir})
	require.NoError(t, err)
	return store.NewSnapshotCache(st, discardLogger())
}

func newServer(t *testing.T, ds *store.DataSource) *httptest.Server {
	t.Helper()
	logger := discardLogger()
	m := metrics.New()

	router := chat.NewRouter(ds, logger).
		WithPicker(func(int) int { return 0 }).
		WithMetrics(m)

	mux := http.NewServeMux()
	storehandler.NewStoreHandler(ds, logger).Register(mux)
	chathandler.NewChatHandler(router, logger).Register(mux)
	mux.Handle("GET /metrics", m.Handler())

	server := httptest.NewServer(httpserver.Wrap(mux, httpserver.Options{Logger: logger, Metrics: m}))
	t.Cleanup(server.Close)
	return server
}

func ask(t *testing.T, server *httptest.Server, body string) chatResponse {
	t.Helper()
	resp, err := http.Post(server.URL+"/analisar", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSheetToChatFlow(t *testing.T) {
	cacheDir := t.TempDir()
	ds := store.NewDataSource(store.NewFileFetcher(sheetPath), sheet.NewBuilder(nil, nil), discardLogger()).
		WithCache(newCache(t, cacheDir))
	server := newServer(t, ds)

	t.Run("LookupByCode", func(t *testing.T) {
		reply := ask(t, server, `{"message":"como está a loja 174028-1?"}`)

		assert.Equal(t, string(chat.IntentStoreByCode), reply.Intent)
		assert.Equal(t, "174028-1", reply.EG)
		assert.Contains(t, reply.Text, "ANÁLISE RAIO-X | Supermercado Bahamas Centro")
		assert.Contains(t, reply.Text, "Rede: Bahamas")
		assert.Contains(t, reply.Text, "🎯 Gap: Stella")
		assert.NotEmpty(t, reply.Card)
	})

	t.Run("LegacyPrompt", func(t *testing.T) {
		reply := ask(t, server, `{"prompt":"EG: 300001-5\nPERGUNTA DO GN: \"como está?\""}`)

		assert.Equal(t, "300001-5", reply.EG)
		assert.Contains(t, reply.Text, "Verdemar Lourdes")
	})

	t.Run("Disambiguation", func(t *testing.T) {
		reply := ask(t, server, `{"message":"epa"}`)

		assert.Equal(t, string(chat.IntentStoreByName), reply.Intent)
		assert.Contains(t, reply.Text, "EPA Savassi")
		assert.Contains(t, reply.Text, "EPA Buritis")
	})

	t.Run("Greeting", func(t *testing.T) {
		reply := ask(t, server, `{"message":"bom dia"}`)
		assert.Equal(t, string(chat.IntentGreeting), reply.Intent)
	})

	t.Run("Chains", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/v1/chains")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body struct {
			Chains []store.ChainCount `json:"chains"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body.Chains, store.ChainCount{Chain: "EPA", Stores: 2})
		assert.Contains(t, body.Chains, store.ChainCount{Chain: "Verdemar", Stores: 1})
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(data), "raiox_chat_intent_total")
	})

	t.Run("CacheServesWhenSheetIsGone", func(t *testing.T) {
		offline := store.NewDataSource(store.NewFileFetcher(filepath.Join(t.TempDir(), "missing.csv")), sheet.NewBuilder(nil, nil), discardLogger()).
			WithCache(newCache(t, cacheDir))

		snap, err := offline.Current(context.Background())
		require.NoError(t, err)
		assert.Equal(t, store.SourceCache, snap.Source())
		assert.Equal(t, 4, snap.Len())

		reply := ask(t, newServer(t, offline), `{"message":"200003-4"}`)
		assert.Contains(t, reply.Text, "EPA Buritis")
	})
}
