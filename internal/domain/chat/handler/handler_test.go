package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/raiox-score/internal/domain/chat"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingResponder struct {
	queries []chat.Query
}

func (r *recordingResponder) Respond(_ context.Context, q chat.Query) chat.Reply {
	r.queries = append(r.queries, q)
	return chat.Reply{Text: "ok", Intent: chat.IntentUnrecognized}
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func newMux(responder Responder) *http.ServeMux {
	mux := http.NewServeMux()
	NewChatHandler(responder, discardLogger()).Register(mux)
	return mux
}

func TestChat_RequestShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want chat.Query
	}{
		{
			name: "structured",
			body: `{"message":"como está?","eg":" 12345-6 "}`,
			want: chat.Query{Message: "como está?", StoreCode: "12345-6"},
		},
		{
			name: "message that is only a code",
			body: `{"message":"12345-6"}`,
			want: chat.Query{Message: "12345-6", StoreCode: "12345-6"},
		},
		{
			name: "legacy prompt with store block",
			body: `{"prompt":"Você é o assistente.\nEG: 174028-1\nPERGUNTA DO GN: \"tem ponto extra?\""}`,
			want: chat.Query{Message: "tem ponto extra?", StoreCode: "174028-1"},
		},
		{
			name: "legacy prompt whose question is a code",
			body: `{"prompt":"EG: 174028-1\nPERGUNTA DO GN: \"20000-2\""}`,
			want: chat.Query{Message: "20000-2", StoreCode: "20000-2"},
		},
		{
			name: "legacy prompt without markers",
			body: `{"prompt":"  menu  "}`,
			want: chat.Query{Message: "menu"},
		},
		{
			name: "explicit eg wins over prompt",
			body: `{"eg":"1-1","prompt":"EG: 174028-1\nPERGUNTA DO GN: \"oi\""}`,
			want: chat.Query{Message: "oi", StoreCode: "1-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := &recordingResponder{}
			rec := post(t, newMux(responder), "/v1/chat", tt.body)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Len(t, responder.queries, 1)
			assert.Equal(t, tt.want, responder.queries[0])
		})
	}
}

func TestChat_InvalidBody(t *testing.T) {
	responder := &recordingResponder{}
	rec := post(t, newMux(responder), "/analisar", `{"message":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, responder.queries)
}

func TestChat_TooLarge(t *testing.T) {
	body := `{"message":"` + strings.Repeat("a", maxRequestBytes) + `"}`
	rec := post(t, newMux(&recordingResponder{}), "/v1/chat", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestChat_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&recordingResponder{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analisar", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type staticData struct{ snap *store.Snapshot }

func (s staticData) Current(context.Context) (*store.Snapshot, error) { return s.snap, nil }

func TestChat_WithRouter(t *testing.T) {
	r := store.Record{StoreCode: "12345-6", DisplayName: "EPA Savassi", ChainName: "EPA", Corona: "SIM"}
	r.SearchKey = store.BuildSearchKey(r)
	snap := store.NewSnapshot([]store.Record{r}, time.Now(), store.SourceSheet, 0)
	router := chat.NewRouter(staticData{snap: snap}, discardLogger())

	rec := post(t, newMux(router), "/analisar", `{"message":"12345-6"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Text   string          `json:"resposta"`
		Card   json.RawMessage `json:"card"`
		Intent string          `json:"intent"`
		EG     string          `json:"eg"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Text, "ANÁLISE RAIO-X | EPA Savassi")
	assert.NotEmpty(t, body.Card)
	assert.Equal(t, string(chat.IntentStoreByCode), body.Intent)
	assert.Equal(t, "12345-6", body.EG)
}
