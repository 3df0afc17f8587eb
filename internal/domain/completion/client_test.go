package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDoer struct {
	lastBody []byte
	resp     *http.Response
	err      error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		f.lastBody, _ = io.ReadAll(req.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header)}
}

func TestClient_StructuredRequest(t *testing.T) {
	doer := &fakeDoer{resp: response(http.StatusOK, `{"resposta":"Tudo certo","card":{"type":"analysis_v2"}}`)}
	client := NewClient("http://backend/analisar", time.Second, doer, discardLogger())

	got, err := client.Complete(context.Background(), StructuredRequest{Message: "como está?", StoreCode: "12345-6"})
	require.NoError(t, err)
	assert.Equal(t, "Tudo certo", got.Text)
	assert.JSONEq(t, `{"type":"analysis_v2"}`, string(got.Card))

	var sent map[string]string
	require.NoError(t, json.Unmarshal(doer.lastBody, &sent))
	assert.Equal(t, map[string]string{"message": "como está?", "eg": "12345-6"}, sent)
}

func TestClient_LegacyRequest(t *testing.T) {
	doer := &fakeDoer{resp: response(http.StatusOK, `{"resposta":"ok"}`)}
	client := NewClient("http://backend", time.Second, doer, discardLogger())

	_, err := client.Complete(context.Background(), LegacyPromptRequest{Prompt: "EG: 1-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompt":"EG: 1-1"}`, string(doer.lastBody))
}

func TestClient_Errors(t *testing.T) {
	html := "<!DOCTYPE html><html><head><title>Error 500 (Server Error)!!1</title></head><body>" +
		strings.Repeat("x", 300) + "</body></html>"

	tests := []struct {
		name        string
		status      int
		body        string
		contains    []string
		notContains string
	}{
		{
			name:        "html error page is excerpted",
			status:      http.StatusInternalServerError,
			body:        html,
			contains:    []string{"Erro 500", "<!DOCTYPE html>", "..."},
			notContains: "</html>",
		},
		{
			name:     "json error envelope",
			status:   http.StatusBadRequest,
			body:     `{"error":"EG inválido"}`,
			contains: []string{"Erro 400", "EG inválido"},
		},
		{
			name:     "success status with html body",
			status:   http.StatusOK,
			body:     "<html>proxy</html>",
			contains: []string{"Backend retornou algo inválido", "<html>proxy</html>"},
		},
		{
			name:     "success status with error field",
			status:   http.StatusOK,
			body:     `{"error":"cota excedida"}`,
			contains: []string{"cota excedida"},
		},
		{
			name:     "empty answer",
			status:   http.StatusOK,
			body:     `{"resposta":"  "}`,
			contains: []string{"vazia"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient("http://backend", time.Second, &fakeDoer{resp: response(tt.status, tt.body)}, discardLogger())

			_, err := client.Complete(context.Background(), StructuredRequest{Message: "oi"})
			require.Error(t, err)

			var upstream *UpstreamError
			assert.True(t, errors.As(err, &upstream))
			for _, c := range tt.contains {
				assert.Contains(t, err.Error(), c)
			}
			if tt.notContains != "" {
				assert.NotContains(t, err.Error(), tt.notContains)
			}
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	client := NewClient("http://backend", time.Second, &fakeDoer{err: errors.New("connection refused")}, discardLogger())

	_, err := client.Complete(context.Background(), StructuredRequest{Message: "oi"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, FailureMessage(err), "❌ Erro no Backend:")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, 20*time.Millisecond, nil, discardLogger())
	_, err := client.Complete(context.Background(), StructuredRequest{Message: "oi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, FailureMessage(err), "demorou demais")
}

func TestClient_RealServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html><body>Service Unavailable</body></html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, srv.Client(), discardLogger()).
		Complete(context.Background(), LegacyPromptRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, "Erro 500: <html><body>Service Unavailable</body></html>", err.Error())
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "abc", Excerpt("  abc  ", 5))
	assert.Equal(t, "ab...", Excerpt("abcdef", 2))
	assert.Equal(t, "ção...", Excerpt("çãoxyz", 3), "cuts on runes, not bytes")
}

func TestPromptText(t *testing.T) {
	assert.Equal(t, "full prompt", PromptText(LegacyPromptRequest{Prompt: "full prompt"}))
	assert.Equal(t, "oi", PromptText(StructuredRequest{Message: "oi"}))
	assert.Equal(t, "EG: 1-1\nPERGUNTA DO GN: \"share?\"", PromptText(StructuredRequest{Message: "share?", StoreCode: "1-1"}))
}

func TestNop(t *testing.T) {
	_, err := Nop{}.Complete(context.Background(), StructuredRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
