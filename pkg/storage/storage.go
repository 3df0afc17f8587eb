// Package storage keeps named blobs (the last good sheet snapshot, exports)
// behind a small interface so the backing store can change.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no object exists under a name.
var ErrNotFound = errors.New("storage: object not found")

// FileInfo contains metadata about a stored object
type FileInfo struct {
	ID          uuid.UUID `json:"id"` // New for every write
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for object storage operations
type Storage interface {
	// Put stores r under name, replacing any previous object atomically
	Put(ctx context.Context, name string, contentType string, r io.Reader) (*FileInfo, error)

	// Get opens the object stored under name
	Get(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error)

	// Stat returns metadata without opening the object
	Stat(ctx context.Context, name string) (*FileInfo, error)

	// Delete removes the object; deleting a missing object is not an error
	Delete(ctx context.Context, name string) error

	// List returns metadata for every stored object
	List(ctx context.Context) ([]*FileInfo, error)
}

// StorageType identifies the storage backend
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
)

// Config holds storage configuration
type Config struct {
	Type      StorageType
	LocalPath string
}

// New creates a new Storage implementation based on configuration
func New(cfg *Config) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		fallthrough
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}
