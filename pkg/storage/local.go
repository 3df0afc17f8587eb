package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const metaDirName = ".meta"

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		return nil, errors.New("storage: local path is required")
	}
	if err := os.MkdirAll(filepath.Join(basePath, metaDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Put writes to a temporary file and renames it over the target, so readers
// never observe a partial object.
func (s *LocalStorage) Put(ctx context.Context, name string, contentType string, r io.Reader) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	safeName := sanitizeFilename(name)
	if safeName == "" {
		return nil, errors.New("storage: name is required")
	}

	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpPath, s.objectPath(safeName)); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}

	info := &FileInfo{
		ID:          uuid.New(),
		Name:        safeName,
		Size:        size,
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}
	if err := s.saveMetadata(info); err != nil {
		return nil, err
	}
	return info, nil
}

// Get opens the object stored under name
func (s *LocalStorage) Get(ctx context.Context, name string) (io.ReadCloser, *FileInfo, error) {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.objectPath(info.Name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, info, nil
}

// Stat returns metadata for an object without opening it
func (s *LocalStorage) Stat(ctx context.Context, name string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.metaPath(sanitizeFilename(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

// Delete removes an object and its metadata
func (s *LocalStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	safeName := sanitizeFilename(name)
	if err := os.Remove(s.objectPath(safeName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := os.Remove(s.metaPath(safeName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// List returns metadata for all objects, newest first
func (s *LocalStorage) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, metaDirName))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := s.Stat(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

func (s *LocalStorage) objectPath(safeName string) string {
	return filepath.Join(s.basePath, safeName)
}

func (s *LocalStorage) metaPath(safeName string) string {
	return filepath.Join(s.basePath, metaDirName, safeName+".json")
}

// saveMetadata saves object metadata to a JSON sidecar file
func (s *LocalStorage) saveMetadata(info *FileInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(info.Name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return strings.TrimLeft(replacer.Replace(strings.TrimSpace(name)), ".")
}
