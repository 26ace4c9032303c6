package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects on disk under a static directory served by the app.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates a disk-backed provider. baseURL is the URL prefix the
// static directory is served under (e.g. "/uploads").
func NewLocal(dir, baseURL string) (*Local, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("storage: local dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

func (l *Local) Put(ctx context.Context, key string, payload []byte, contentType string) (string, error) {
	path, err := l.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", err
	}
	return l.baseURL + "/" + NormalizeKey(key), nil
}

func (l *Local) Remove(ctx context.Context, key string) error {
	path, err := l.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the root directory objects are written under.
func (l *Local) Dir() string { return l.dir }

func (l *Local) pathFor(key string) (string, error) {
	key = NormalizeKey(key)
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("storage: invalid object key %q", key)
	}
	return filepath.Join(l.dir, filepath.FromSlash(key)), nil
}
