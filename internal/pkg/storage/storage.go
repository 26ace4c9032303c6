package storage

import (
	"context"
	"strings"
)

// Provider stores uploaded media objects. Implementations must return a
// publicly reachable URL for the stored object.
type Provider interface {
	Put(ctx context.Context, key string, payload []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// NormalizeKey sanitizes an object key to forward slashes without leading
// separators or empty segments.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}
