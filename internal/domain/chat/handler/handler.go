// Package handler serves the chat endpoint used by the app's assistant screen.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/FACorreiaa/raiox-score/internal/domain/chat"
	"github.com/FACorreiaa/raiox-score/pkg/httpserver"
)

const maxRequestBytes = 64 << 10

var (
	promptCodePattern     = regexp.MustCompile(`EG: (\d+-\d)`)
	promptQuestionCode    = regexp.MustCompile(`PERGUNTA DO GN: "(\d+-\d)"`)
	promptQuestionPattern = regexp.MustCompile(`PERGUNTA DO GN: "((?:[^"\\]|\\.)*)"`)
	bareCodePattern       = regexp.MustCompile(`^\d+-\d$`)
)

// Responder answers one chat turn.
type Responder interface {
	Respond(ctx context.Context, q chat.Query) chat.Reply
}

// ChatHandler serves chat requests
type ChatHandler struct {
	responder Responder
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(responder Responder, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{responder: responder, logger: logger}
}

// Register mounts the routes on mux. /analisar keeps the path the app already calls.
func (h *ChatHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /analisar", h.Chat)
	mux.HandleFunc("POST /v1/chat", h.Chat)
}

// chatRequest accepts both the current {message, eg} body and the legacy
// {prompt} body carrying a fully built instruction string.
type chatRequest struct {
	Message string `json:"message"`
	EG      string `json:"eg"`
	Prompt  string `json:"prompt"`
}

// Chat answers with {resposta, card?}. Every routed message gets a 200; only
// undecodable bodies are rejected.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpserver.WriteError(w, http.StatusRequestEntityTooLarge, "mensagem muito grande")
			return
		}
		h.logger.Debug("invalid chat request", slog.Any("error", err))
		httpserver.WriteError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	reply := h.responder.Respond(r.Context(), req.query())
	httpserver.WriteJSON(w, http.StatusOK, reply)
}

// query resolves the request shape into a chat turn.
func (req chatRequest) query() chat.Query {
	q := chat.Query{
		Message:   strings.TrimSpace(req.Message),
		StoreCode: strings.TrimSpace(req.EG),
	}

	if prompt := req.Prompt; prompt != "" {
		if q.StoreCode == "" {
			if m := promptCodePattern.FindStringSubmatch(prompt); m != nil {
				q.StoreCode = m[1]
			}
			if m := promptQuestionCode.FindStringSubmatch(prompt); m != nil {
				q.StoreCode = m[1]
			}
		}
		if q.Message == "" {
			q.Message = legacyQuestion(prompt)
		}
	}

	if bareCodePattern.MatchString(q.Message) {
		q.StoreCode = q.Message
	}
	return q
}

// legacyQuestion pulls the user's own words out of a built prompt, falling
// back to the whole prompt.
func legacyQuestion(prompt string) string {
	m := promptQuestionPattern.FindStringSubmatch(prompt)
	if m == nil {
		return strings.TrimSpace(prompt)
	}
	return strings.TrimSpace(strings.ReplaceAll(m[1], `\"`, `"`))
}
