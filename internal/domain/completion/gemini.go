package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/FACorreiaa/raiox-score/pkg/metrics"
)

const defaultGeminiModel = "gemini-2.0-flash"

const geminiSystemInstruction = "Você é o assistente do Raio-X Score, que ajuda gerentes de negócio a analisar " +
	"a execução de cerveja em supermercados. Responda em português, de forma curta e prática."

// contentGenerator is the part of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCompleter answers requests with a Gemini model.
type GeminiCompleter struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewGeminiCompleter creates the genai client.
func NewGeminiCompleter(ctx context.Context, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiCompleter(client.Models, model, timeout, logger), nil
}

func newGeminiCompleter(models contentGenerator, model string, timeout time.Duration, logger *slog.Logger) *GeminiCompleter {
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GeminiCompleter{models: models, model: model, timeout: timeout, logger: logger}
}

// WithMetrics enables completion metrics.
func (g *GeminiCompleter) WithMetrics(m *metrics.Metrics) *GeminiCompleter {
	g.metrics = m
	return g
}

// Complete sends the prompt text of req to the model.
func (g *GeminiCompleter) Complete(ctx context.Context, req Request) (*Completion, error) {
	ctx, span := tracer.Start(ctx, "completion.gemini")
	defer span.End()
	span.SetAttributes(attribute.String("gemini.model", g.model))

	prompt := strings.TrimSpace(PromptText(req))
	if prompt == "" {
		return nil, errors.New("completion prompt is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(geminiSystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			g.metrics.CompletionFinished("timeout")
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		g.metrics.CompletionFinished("error")
		g.logger.Warn("gemini request failed", slog.String("model", g.model), slog.Any("error", err))
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.metrics.CompletionFinished("error")
		return nil, &UpstreamError{Message: "Gemini retornou uma resposta vazia"}
	}
	g.metrics.CompletionFinished("success")
	return &Completion{Text: text}, nil
}
