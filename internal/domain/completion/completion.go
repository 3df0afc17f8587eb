// Package completion talks to the external assistant that answers free-form
// questions: either the project's HTTP analysis endpoint or Gemini directly.
package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrTimeout means the completion service did not answer in time. Callers may retry.
var ErrTimeout = errors.New("completion service timed out")

// ErrNotConfigured is returned by the no-op completer.
var ErrNotConfigured = errors.New("completion service not configured")

// Request is either a StructuredRequest or a LegacyPromptRequest.
type Request interface {
	isRequest()
}

// StructuredRequest carries the user's message and, when known, the store
// code. The endpoint looks the store up and builds its own prompt.
type StructuredRequest struct {
	Message   string
	StoreCode string
}

// LegacyPromptRequest carries a fully built prompt for endpoints that only
// accept a single prompt string.
type LegacyPromptRequest struct {
	Prompt string
}

func (StructuredRequest) isRequest()   {}
func (LegacyPromptRequest) isRequest() {}

// PromptText returns the text a prompt-only model should receive for req.
func PromptText(req Request) string {
	switch r := req.(type) {
	case LegacyPromptRequest:
		return r.Prompt
	case StructuredRequest:
		if r.StoreCode == "" {
			return r.Message
		}
		return fmt.Sprintf("EG: %s\nPERGUNTA DO GN: %q", r.StoreCode, r.Message)
	default:
		return ""
	}
}

// Completion is the assistant's answer. Card is an optional structured payload
// passed through to clients untouched.
type Completion struct {
	Text string          `json:"resposta"`
	Card json.RawMessage `json:"card,omitempty"`
}

// Completer answers a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Nop is a Completer for deployments without an assistant.
type Nop struct{}

// Complete always fails with ErrNotConfigured.
func (Nop) Complete(context.Context, Request) (*Completion, error) {
	return nil, ErrNotConfigured
}

// UpstreamError is a non-success answer from the completion endpoint.
type UpstreamError struct {
	StatusCode int
	// Message is the endpoint's own error text, or a short excerpt of its body.
	Message string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("Erro %d: %s", e.StatusCode, e.Message)
}

// FailureMessage renders err as the chat reply shown to the user.
func FailureMessage(err error) string {
	if errors.Is(err, ErrTimeout) {
		return "⏱️ O assistente demorou demais para responder. Tente novamente em instantes."
	}
	return "❌ Erro no Backend: " + err.Error()
}

// Excerpt trims body to at most limit runes, marking truncation with "...".
func Excerpt(body string, limit int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= limit {
		return body
	}
	runes := []rune(body)
	return string(runes[:limit]) + "..."
}
