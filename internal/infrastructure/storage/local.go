package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore implements ports.ImageStore on a directory. The directory is
// served by the HTTP server under BaseURL.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates root if needed. baseURL is the public prefix the
// directory is mounted at, e.g. "/uploads".
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, keyPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Root returns the directory holding the images.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Put(ctx context.Context, filename, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(filename)
	if err := os.WriteFile(filepath.Join(s.root, filepath.FromSlash(key)), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return refFor(s.baseURL, key), nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	key, err := keyFor(s.baseURL, ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
