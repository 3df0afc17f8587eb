package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/raiox-score/pkg/storage"
)

const snapshotObjectName = "snapshot.csv"

// cachedRecord is the on-disk row of the last good snapshot.
type cachedRecord struct {
	Record
	ExtrasJSON string `csv:"extras"`
}

// SnapshotCache persists the last good snapshot so a restart without network
// access still has data to serve.
type SnapshotCache struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewSnapshotCache creates a cache over storage.
func NewSnapshotCache(st storage.Storage, logger *slog.Logger) *SnapshotCache {
	return &SnapshotCache{storage: st, logger: logger}
}

// Save writes every record of snap.
func (c *SnapshotCache) Save(ctx context.Context, snap *Snapshot) error {
	rows := make([]*cachedRecord, 0, snap.Len())
	for _, r := range snap.records {
		row := &cachedRecord{Record: r}
		if len(r.Extras) > 0 {
			extras, err := json.Marshal(r.Extras)
			if err != nil {
				return fmt.Errorf("failed to encode extras for %s: %w", r.StoreCode, err)
			}
			row.ExtrasJSON = string(extras)
		}
		rows = append(rows, row)
	}

	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := c.storage.Put(ctx, snapshotObjectName, "text/csv", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	c.logger.Debug("snapshot cached", slog.Int("records", len(rows)))
	return nil
}

// Load reads the cached snapshot. It returns storage.ErrNotFound (wrapped)
// when nothing was cached yet.
func (c *SnapshotCache) Load(ctx context.Context) (*Snapshot, error) {
	rc, info, err := c.storage.Get(ctx, snapshotObjectName)
	if err != nil {
		return nil, fmt.Errorf("failed to open cached snapshot: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached snapshot: %w", err)
	}

	var rows []*cachedRecord
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		r := row.Record
		if r.StoreCode == "" {
			continue
		}
		if row.ExtrasJSON != "" {
			if err := json.Unmarshal([]byte(row.ExtrasJSON), &r.Extras); err != nil {
				c.logger.Warn("ignoring unreadable cached extras",
					slog.String("eg", r.StoreCode),
					slog.Any("error", err),
				)
				r.Extras = nil
			}
		}
		r.SearchKey = BuildSearchKey(r)
		records = append(records, r)
	}

	return NewSnapshot(records, info.CreatedAt, SourceCache, 0), nil
}
