// Package handler exposes the store snapshot over HTTP: listings, per-store
// reports, chain summaries, XLSX export and a manual refresh.
package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FACorreiaa/raiox-score/internal/domain/analysis"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	"github.com/FACorreiaa/raiox-score/pkg/httpserver"
)

const loadingMessage = "Os dados da planilha ainda estão carregando. Tente novamente em alguns segundos."

// DataSource is the part of store.DataSource the handlers need.
type DataSource interface {
	Current(ctx context.Context) (*store.Snapshot, error)
	Refresh(ctx context.Context) (*store.Snapshot, error)
	Snapshot() *store.Snapshot
}

// RefreshLog reads the persisted refresh attempts.
type RefreshLog interface {
	ListRecent(ctx context.Context, limit int) ([]store.RefreshRun, error)
	LastSuccess(ctx context.Context) (*store.RefreshRun, error)
}

// StoreHandler serves the store endpoints
type StoreHandler struct {
	data       DataSource
	refreshLog RefreshLog
	logger     *slog.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(data DataSource, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{data: data, logger: logger}
}

// WithRefreshLog enables GET /v1/admin/refreshes.
func (h *StoreHandler) WithRefreshLog(log RefreshLog) *StoreHandler {
	h.refreshLog = log
	return h
}

// Register mounts the routes on mux.
func (h *StoreHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /v1/stores", h.ListStores)
	mux.HandleFunc("GET /v1/stores/export.xlsx", h.ExportStores)
	mux.HandleFunc("GET /v1/stores/{code}", h.GetStore)
	mux.HandleFunc("GET /v1/stores/{code}/report", h.GetReport)
	mux.HandleFunc("GET /v1/chains", h.ListChains)
	mux.HandleFunc("POST /v1/admin/refresh", h.Refresh)
	mux.HandleFunc("GET /v1/admin/refreshes", h.ListRefreshes)
}

type snapshotMeta struct {
	Total     int          `json:"total"`
	Source    store.Source `json:"source"`
	FetchedAt *time.Time   `json:"fetched_at,omitempty"`
}

func metaOf(snap *store.Snapshot, total int) snapshotMeta {
	if snap == nil {
		snap = store.EmptySnapshot()
	}
	meta := snapshotMeta{Total: total, Source: snap.Source()}
	if at := snap.FetchedAt(); !at.IsZero() {
		meta.FetchedAt = &at
	}
	return meta
}

type listStoresResponse struct {
	snapshotMeta
	Stores []store.Record `json:"stores"`
}

type reportResponse struct {
	StoreCode string          `json:"eg"`
	Text      string          `json:"resposta"`
	Card      analysis.Card   `json:"card"`
	Report    analysis.Report `json:"report"`
}

type chainsResponse struct {
	Chains []store.ChainCount `json:"chains"`
}

type refreshRunView struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Rows       int       `json:"rows"`
	Records    int       `json:"records"`
	Dropped    int       `json:"dropped"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

func viewOf(run store.RefreshRun) refreshRunView {
	return refreshRunView{
		ID:         run.ID.String(),
		StartedAt:  run.StartedAt,
		DurationMS: run.Duration.Milliseconds(),
		Rows:       run.Rows,
		Records:    run.Records,
		Dropped:    run.Dropped,
		Success:    run.Success,
		Error:      run.Error,
	}
}

type refreshesResponse struct {
	Runs        []refreshRunView `json:"runs"`
	LastSuccess *refreshRunView  `json:"last_success,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
	snapshotMeta
}

// snapshot loads the current snapshot, answering 503 itself when there is none.
func (h *StoreHandler) snapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	snap, err := h.data.Current(r.Context())
	if err != nil && snap.IsEmpty() {
		h.logger.Warn("store data unavailable", slog.Any("error", err))
		httpserver.WriteError(w, http.StatusServiceUnavailable, loadingMessage)
		return nil, false
	}
	if snap == nil {
		snap = store.EmptySnapshot()
	}
	return snap, true
}

// Health reports whether data is loaded. It never triggers a refresh.
func (h *StoreHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.data.Snapshot()
	resp := healthResponse{Status: "ok", snapshotMeta: metaOf(snap, snap.Len())}
	if snap.IsEmpty() {
		resp.Status = "loading"
	}
	httpserver.WriteJSON(w, http.StatusOK, resp)
}

// ListStores lists stores, filtered by ?rede= and ?q=, paginated by ?limit= and ?offset=.
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	records := snap.Filter(q.Get("rede"), q.Get("q"))
	total := len(records)

	offset := queryInt(q.Get("offset"), 0)
	limit := queryInt(q.Get("limit"), 0)
	if offset > len(records) {
		offset = len(records)
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	httpserver.WriteJSON(w, http.StatusOK, listStoresResponse{
		snapshotMeta: metaOf(snap, total),
		Stores:       records,
	})
}

// GetStore returns the record for one store code.
func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.findOne(w, r)
	if !ok {
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, rec)
}

// GetReport returns the rule-based report for one store code.
func (h *StoreHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.findOne(w, r)
	if !ok {
		return
	}
	report := analysis.Analyze(rec)
	httpserver.WriteJSON(w, http.StatusOK, reportResponse{
		StoreCode: rec.StoreCode,
		Text:      report.Text(),
		Card:      report.Card(),
		Report:    report,
	})
}

func (h *StoreHandler) findOne(w http.ResponseWriter, r *http.Request) (store.Record, bool) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return store.Record{}, false
	}

	matches := snap.FindByCode(r.PathValue("code"))
	if len(matches) == 0 {
		httpserver.WriteError(w, http.StatusNotFound, analysis.NotFoundMessage)
		return store.Record{}, false
	}
	if len(matches) > 1 {
		h.logger.Warn("duplicate store code in sheet",
			slog.String("eg", matches[0].StoreCode),
			slog.Int("records", len(matches)),
		)
	}
	return matches[0], true
}

// ListChains lists chains and their store counts.
func (h *StoreHandler) ListChains(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, chainsResponse{Chains: snap.Chains()})
}

// ExportStores downloads the filtered stores as an Excel workbook.
func (h *StoreHandler) ExportStores(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var buf bytes.Buffer
	if err := store.ExportXLSX(&buf, snap.Filter(q.Get("rede"), q.Get("q")), snap.Chains()); err != nil {
		h.logger.Error("failed to export stores", slog.Any("error", err))
		httpserver.WriteError(w, http.StatusInternalServerError, "failed to export stores")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="raiox-lojas.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Refresh forces a sheet reload. A failed reload keeps the previous snapshot
// and answers 502 with what is still being served.
func (h *StoreHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.data.Refresh(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		httpserver.WriteJSON(w, status, struct {
			Error string `json:"error"`
			snapshotMeta
		}{Error: err.Error(), snapshotMeta: metaOf(snap, snap.Len())})
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, metaOf(snap, snap.Len()))
}

// ListRefreshes lists the latest persisted refresh attempts, ?limit= capped by the repository.
func (h *StoreHandler) ListRefreshes(w http.ResponseWriter, r *http.Request) {
	if h.refreshLog == nil {
		httpserver.WriteError(w, http.StatusNotFound, "refresh log disabled")
		return
	}

	runs, err := h.refreshLog.ListRecent(r.Context(), queryInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		h.logger.Error("failed to list refresh runs", slog.Any("error", err))
		httpserver.WriteError(w, http.StatusInternalServerError, "failed to list refresh runs")
		return
	}
	last, err := h.refreshLog.LastSuccess(r.Context())
	if err != nil {
		h.logger.Error("failed to load last successful refresh", slog.Any("error", err))
		httpserver.WriteError(w, http.StatusInternalServerError, "failed to list refresh runs")
		return
	}

	resp := refreshesResponse{Runs: make([]refreshRunView, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, viewOf(run))
	}
	if last != nil {
		v := viewOf(*last)
		resp.LastSuccess = &v
	}
	httpserver.WriteJSON(w, http.StatusOK, resp)
}

func queryInt(raw string, def int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
