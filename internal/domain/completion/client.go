package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/raiox-score/pkg/metrics"
)

var tracer = otel.Tracer("github.com/FACorreiaa/raiox-score/internal/domain/completion")

const (
	defaultTimeout = 10 * time.Second
	errorExcerpt   = 100
	invalidExcerpt = 50
	maxBodyBytes   = 1 << 20
)

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts requests to the HTTP analysis endpoint.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient HTTPDoer
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a client with sane defaults.
func NewClient(endpoint string, timeout time.Duration, httpClient HTTPDoer, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{endpoint: endpoint, timeout: timeout, httpClient: httpClient, logger: logger}
}

// WithMetrics enables completion metrics.
func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

type structuredPayload struct {
	Message string `json:"message"`
	EG      string `json:"eg,omitempty"`
}

type legacyPayload struct {
	Prompt string `json:"prompt"`
}

type responseEnvelope struct {
	Text  string          `json:"resposta"`
	Card  json.RawMessage `json:"card,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Complete sends req and decodes the answer. Non-2xx statuses and bodies that
// are not JSON (an HTML error page, a proxy banner) become *UpstreamError.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	ctx, span := tracer.Start(ctx, "completion.http",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("completion.request", requestKind(req))),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	result, err := c.complete(ctx, req)
	switch {
	case err == nil:
		c.metrics.CompletionFinished("success")
	case errors.Is(err, ErrTimeout):
		c.metrics.CompletionFinished("timeout")
	default:
		c.metrics.CompletionFinished("error")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("completion request failed",
			slog.String("request", requestKind(req)),
			slog.Duration("elapsed", time.Since(started)),
			slog.Any("error", err),
		)
		return nil, err
	}

	c.logger.Debug("completion request finished",
		slog.String("request", requestKind(req)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (c *Client) complete(ctx context.Context, req Request) (*Completion, error) {
	payload, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var envelope responseEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: envelope.Error}
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: Excerpt(string(body), errorExcerpt)}
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &UpstreamError{Message: "Backend retornou algo inválido: " + Excerpt(string(body), invalidExcerpt)}
	}
	if envelope.Error != "" {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}
	if strings.TrimSpace(envelope.Text) == "" {
		return nil, &UpstreamError{Message: "Backend retornou uma resposta vazia"}
	}
	return &Completion{Text: envelope.Text, Card: envelope.Card}, nil
}

func encodeRequest(req Request) ([]byte, error) {
	var v any
	switch r := req.(type) {
	case StructuredRequest:
		v = structuredPayload{Message: r.Message, EG: r.StoreCode}
	case LegacyPromptRequest:
		v = legacyPayload{Prompt: r.Prompt}
	default:
		return nil, fmt.Errorf("unsupported completion request %T", req)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}
	return payload, nil
}

func requestKind(req Request) string {
	switch req.(type) {
	case StructuredRequest:
		return "structured"
	case LegacyPromptRequest:
		return "legacy_prompt"
	default:
		return "unknown"
	}
}
