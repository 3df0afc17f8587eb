package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/FACorreiaa/raiox-score/internal/domain/store")

// ErrSourceUnavailable means the sheet could not be fetched. Callers keep
// serving whatever snapshot they already have.
var ErrSourceUnavailable = errors.New("sheet source unavailable")

// maxSheetBytes bounds how much of a sheet response is read.
const maxSheetBytes = 32 << 20

// Fetcher returns the raw sheet text.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher downloads the published CSV export of the sheet.
type HTTPFetcher struct {
	url        string
	timeout    time.Duration
	httpClient HTTPDoer
}

// NewHTTPFetcher creates a fetcher; a nil client uses http.DefaultClient.
func NewHTTPFetcher(url string, timeout time.Duration, httpClient HTTPDoer) *HTTPFetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{url: url, timeout: timeout, httpClient: httpClient}
}

// Fetch performs one GET against the sheet URL.
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "sheet.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("sheet.url", f.url)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	text, err := f.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("sheet.bytes", len(text)))
	return text, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	return string(body), nil
}

// FileFetcher reads the sheet from a local CSV export.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher over a local file.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Fetch reads the whole file.
func (f *FileFetcher) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return string(data), nil
}
