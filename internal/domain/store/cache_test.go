package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/raiox-score/pkg/storage"
)

func TestSnapshotCache_RoundTrip(t *testing.T) {
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	cache := NewSnapshotCache(st, discardLogger())
	ctx := context.Background()

	original := Record{
		StoreCode:         "12345-6",
		DisplayName:       `Loja "Central", BH`,
		ChainName:         "EPA",
		ManagerName:       "Ana",
		ShareSpacePrior:   "30,0",
		ShareSpaceCurrent: "35,0",
		Corona:            "SIM",
		Extras:            map[string]string{"cidade": "Belo Horizonte"},
	}
	original.SearchKey = BuildSearchKey(original)

	require.NoError(t, cache.Save(ctx, NewSnapshot([]Record{original}, time.Now(), SourceSheet, 0)))

	loaded, err := cache.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, SourceCache, loaded.Source())
	assert.Equal(t, original, loaded.Records()[0])
}

func TestSnapshotCache_Missing(t *testing.T) {
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = NewSnapshotCache(st, discardLogger()).Load(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
