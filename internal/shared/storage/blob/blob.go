package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Object is a stored blob's metadata as reported by the backing store.
// URL is globally unique and doubles as the object's primary key; Pathname
// is the storage key under which the bytes live.
type Object struct {
	URL         string
	Pathname    string
	Size        int64
	ContentType string
	UploadedAt  time.Time
}

// ErrUnknownURL is returned by Key when a URL was not produced by this store.
var ErrUnknownURL = errors.New("url does not belong to this store")

// Store is the contract for the managed blob backend: keyed writes, prefix
// listing, and deletion. Objects are immutable once written; there is no
// update operation.
type Store interface {
	// Put writes the reader contents under key. size must be the exact byte
	// count of r.
	Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (Object, error)
	// List returns every object whose key starts with prefix. No ordering is
	// guaranteed.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Delete permanently removes the object at key.
	Delete(ctx context.Context, key string) error
	// Key resolves an object URL back to its storage key, or ErrUnknownURL.
	Key(url string) (string, error)
}

// JoinURL builds the public URL for a storage key.
func JoinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL inverts JoinURL, rejecting URLs outside the base.
func KeyFromURL(base, url string) (string, error) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", ErrUnknownURL
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" {
		return "", ErrUnknownURL
	}
	return key, nil
}
