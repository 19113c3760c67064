package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StoredBlob describes a persisted file.
type StoredBlob struct {
	URL        string
	StorageKey string
	FileName   string
}

// BlobStore is the external file-storage collaborator. Put must succeed
// before any database row referencing the blob is written; Delete is
// idempotent and tolerates missing keys.
type BlobStore interface {
	Put(ctx context.Context, data []byte, fileName, folder string) (*StoredBlob, error)
	Delete(ctx context.Context, storageKey string) error
	Open(storageKey string) (io.ReadCloser, error)
}

// LocalBlobStore persists blobs on disk under a base directory and serves
// them through the configured public base URL.
type LocalBlobStore struct {
	baseDir string
	baseURL string
}

// NewLocalBlobStore ensures the base directory exists and returns a handle.
func NewLocalBlobStore(baseDir, publicBaseURL string) (*LocalBlobStore, error) {
	if baseDir == "" {
		baseDir = "./manifestos"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalBlobStore{baseDir: baseDir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Put writes the blob under a random key inside the folder and returns its
// location.
func (s *LocalBlobStore) Put(ctx context.Context, data []byte, fileName, folder string) (*StoredBlob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := filepath.Join(folder, randomKey()+filepath.Ext(fileName))
	path := filepath.Join(s.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare storage directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write blob: %w", err)
	}
	return &StoredBlob{
		URL:        s.baseURL + "/" + filepath.ToSlash(key),
		StorageKey: key,
		FileName:   fileName,
	}, nil
}

// Delete removes a stored blob if present.
func (s *LocalBlobStore) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, storageKey)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored blob.
func (s *LocalBlobStore) Open(storageKey string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.baseDir, storageKey))
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return file, nil
}

func randomKey() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", os.Getpid())
	}
	return hex.EncodeToString(buf)
}
