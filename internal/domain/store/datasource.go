package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/raiox-score/pkg/metrics"
)

// ErrNoData means no snapshot could be produced yet: the sheet is unreachable
// and nothing was cached.
var ErrNoData = errors.New("store data not loaded yet")

// errEmptySheet keeps an empty parse (an error page, a truncated export) from
// being published or cached. It fails the refresh so the previous snapshot or
// the cache keeps serving.
var errEmptySheet = errors.New("sheet produced no records")

const (
	// DefaultMaxAge is how long a snapshot is served before an on-demand refresh.
	DefaultMaxAge = 5 * time.Minute

	// DefaultRetryBackoff is how long Current waits after a failed refresh
	// before fetching again on behalf of a request.
	DefaultRetryBackoff = 30 * time.Second

	// DefaultRefreshTimeout bounds one refresh, independent of the caller.
	DefaultRefreshTimeout = 30 * time.Second
)

// RefreshRun describes one refresh attempt, for the audit log.
type RefreshRun struct {
	ID        uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Rows      int
	Records   int
	Dropped   int
	Success   bool
	Error     string
}

// RefreshRecorder persists refresh attempts.
type RefreshRecorder interface {
	RecordRefresh(ctx context.Context, run RefreshRun) error
}

// snapshotCache is the part of SnapshotCache the data source needs.
type snapshotCache interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// DataSource owns the current snapshot. Readers never block on a refresh and
// always see either the old or the new snapshot in full.
type DataSource struct {
	fetcher  Fetcher
	builder  RecordBuilder
	logger   *slog.Logger
	cache    snapshotCache
	recorder RefreshRecorder
	metrics  *metrics.Metrics
	maxAge   time.Duration
	backoff  time.Duration
	timeout  time.Duration
	now      func() time.Time

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
	failure atomic.Pointer[refreshFailure]
}

// refreshFailure is the last failed refresh, cleared by the next success.
type refreshFailure struct {
	at  time.Time
	err error
}

// NewDataSource creates a data source holding an empty snapshot.
func NewDataSource(fetcher Fetcher, builder RecordBuilder, logger *slog.Logger) *DataSource {
	ds := &DataSource{
		fetcher: fetcher,
		builder: builder,
		logger:  logger,
		maxAge:  DefaultMaxAge,
		backoff: DefaultRetryBackoff,
		timeout: DefaultRefreshTimeout,
		now:     time.Now,
	}
	ds.current.Store(EmptySnapshot())
	return ds
}

// WithCache enables the last-good snapshot cache.
func (d *DataSource) WithCache(cache snapshotCache) *DataSource {
	d.cache = cache
	return d
}

// WithRefreshRecorder enables the refresh audit log.
func (d *DataSource) WithRefreshRecorder(r RefreshRecorder) *DataSource {
	d.recorder = r
	return d
}

// WithMetrics enables refresh metrics.
func (d *DataSource) WithMetrics(m *metrics.Metrics) *DataSource {
	d.metrics = m
	return d
}

// WithMaxAge sets the staleness bound; zero or negative disables on-demand refresh.
func (d *DataSource) WithMaxAge(maxAge time.Duration) *DataSource {
	d.maxAge = maxAge
	return d
}

// WithRetryBackoff sets how long Current serves what it has after a failed
// refresh; zero retries on every request.
func (d *DataSource) WithRetryBackoff(backoff time.Duration) *DataSource {
	d.backoff = backoff
	return d
}

// WithRefreshTimeout bounds each refresh; zero or negative keeps the default.
func (d *DataSource) WithRefreshTimeout(timeout time.Duration) *DataSource {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// WithClock replaces time.Now, for tests.
func (d *DataSource) WithClock(now func() time.Time) *DataSource {
	d.now = now
	return d
}

// Snapshot returns the current snapshot without triggering a refresh.
func (d *DataSource) Snapshot() *Snapshot {
	return d.current.Load()
}

// Current returns a snapshot fresh enough to serve, refreshing first when the
// current one is empty or stale. A failed refresh still returns the previous
// snapshot if it has data; ErrNoData is returned only when there is none.
// Within the retry backoff of a failed refresh no new fetch is started.
func (d *DataSource) Current(ctx context.Context) (*Snapshot, error) {
	snap := d.current.Load()
	if !snap.IsEmpty() && !d.stale(snap) {
		return snap, nil
	}
	if f := d.recentFailure(); f != nil {
		if !snap.IsEmpty() {
			return snap, nil
		}
		return snap, fmt.Errorf("%w: %w", ErrNoData, f.err)
	}

	fresh, err := d.Refresh(ctx)
	if err == nil {
		return fresh, nil
	}
	if !fresh.IsEmpty() {
		d.logger.Warn("serving previous snapshot after failed refresh",
			slog.Time("fetched_at", fresh.FetchedAt()),
			slog.Any("error", err),
		)
		return fresh, nil
	}
	return fresh, fmt.Errorf("%w: %w", ErrNoData, err)
}

func (d *DataSource) stale(snap *Snapshot) bool {
	if d.maxAge <= 0 {
		return false
	}
	return d.now().Sub(snap.FetchedAt()) > d.maxAge
}

func (d *DataSource) recentFailure() *refreshFailure {
	f := d.failure.Load()
	if f == nil || d.backoff <= 0 || d.now().Sub(f.at) >= d.backoff {
		return nil
	}
	return f
}

// Refresh fetches and rebuilds the snapshot. Concurrent calls share one fetch.
// On failure the previous snapshot stays published and is returned with the error.
// The fetch runs detached from ctx under its own timeout, so a caller that gives
// up returns early without failing the refresh for the others.
func (d *DataSource) Refresh(ctx context.Context) (*Snapshot, error) {
	ch := d.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return d.refresh(rctx)
	})

	select {
	case res := <-ch:
		snap, _ := res.Val.(*Snapshot)
		if snap == nil {
			snap = d.current.Load()
		}
		return snap, res.Err
	case <-ctx.Done():
		return d.current.Load(), ctx.Err()
	}
}

func (d *DataSource) refresh(ctx context.Context) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "store.refresh")
	defer span.End()

	run := RefreshRun{ID: uuid.New(), StartedAt: d.now()}
	snap, result, err := d.load(ctx, run.StartedAt)
	run.Duration = d.now().Sub(run.StartedAt)
	run.Rows = result.Rows
	run.Dropped = result.Dropped

	if err != nil {
		d.failure.Store(&refreshFailure{at: d.now(), err: err})
		run.Error = err.Error()
		d.record(ctx, run)
		d.metrics.RefreshFailed()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error("failed to refresh store snapshot", slog.Any("error", err))

		if prev := d.current.Load(); !prev.IsEmpty() {
			return prev, err
		}
		return d.warmFromCache(ctx), err
	}

	d.current.Store(snap)
	d.failure.Store(nil)
	run.Success = true
	run.Records = snap.Len()
	d.record(ctx, run)
	d.metrics.RefreshSucceeded(snap.Len(), result.Dropped, snap.FetchedAt())
	span.SetAttributes(
		attribute.Int("snapshot.records", snap.Len()),
		attribute.Int("snapshot.dropped", result.Dropped),
	)

	d.logger.Info("store snapshot refreshed",
		slog.Int("records", snap.Len()),
		slog.Int("rows", result.Rows),
		slog.Int("dropped", result.Dropped),
		slog.Int("unmapped_headers", len(result.UnmappedHeaders)),
	)
	if len(result.UnmappedHeaders) > 0 {
		d.logger.Debug("sheet columns kept as extras", slog.Any("headers", result.UnmappedHeaders))
	}

	if d.cache != nil && !snap.IsEmpty() {
		if err := d.cache.Save(ctx, snap); err != nil {
			d.logger.Warn("failed to cache snapshot", slog.Any("error", err))
		}
	}
	return snap, nil
}

func (d *DataSource) load(ctx context.Context, startedAt time.Time) (*Snapshot, BuildResult, error) {
	text, err := d.fetcher.Fetch(ctx)
	if err != nil {
		return nil, BuildResult{}, fmt.Errorf("failed to fetch sheet: %w", err)
	}

	result := d.builder.Build(text)
	if len(result.Records) == 0 {
		return nil, result, fmt.Errorf("%w: %w", ErrSourceUnavailable, errEmptySheet)
	}
	return NewSnapshot(result.Records, startedAt, SourceSheet, result.Dropped), result, nil
}

// warmFromCache publishes the cached snapshot when nothing else is loaded.
func (d *DataSource) warmFromCache(ctx context.Context) *Snapshot {
	if d.cache == nil {
		return d.current.Load()
	}

	cached, err := d.cache.Load(ctx)
	if err != nil {
		d.logger.Warn("no cached snapshot available", slog.Any("error", err))
		return d.current.Load()
	}
	if cached.IsEmpty() {
		return d.current.Load()
	}

	// Only replace an empty snapshot; a concurrent success wins
	if prev := d.current.Load(); prev.IsEmpty() && d.current.CompareAndSwap(prev, cached) {
		d.logger.Info("serving cached snapshot",
			slog.Int("records", cached.Len()),
			slog.Time("cached_at", cached.FetchedAt()),
		)
	}
	return d.current.Load()
}

func (d *DataSource) record(ctx context.Context, run RefreshRun) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordRefresh(ctx, run); err != nil {
		d.logger.Warn("failed to record refresh run",
			slog.String("run_id", run.ID.String()),
			slog.Any("error", err),
		)
	}
}

// RefreshNow refreshes and discards the snapshot, for schedulers.
func (d *DataSource) RefreshNow(ctx context.Context) error {
	_, err := d.Refresh(ctx)
	return err
}
