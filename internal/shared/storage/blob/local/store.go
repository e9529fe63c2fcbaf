package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob"
)

// Store implements blob.Store on the local filesystem. Intended for dev and
// tests; object URLs are built from a configurable public base.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local blob store rooted at baseDir. baseURL is the public
// prefix under which the files are served (e.g. "/blob").
func New(baseDir, baseURL string) *Store {
	if baseURL == "" {
		baseURL = "/blob"
	}
	return &Store{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string { return s.baseDir }

// Put writes the reader contents to disk under key.
func (s *Store) Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (blob.Object, error) {
	if err := ctx.Err(); err != nil {
		return blob.Object{}, err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return blob.Object{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return blob.Object{}, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return blob.Object{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return blob.Object{}, fmt.Errorf("write body: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return blob.Object{}, fmt.Errorf("stat: %w", err)
	}
	_ = size

	return blob.Object{
		URL:         blob.JoinURL(s.baseURL, clean),
		Pathname:    clean,
		Size:        written,
		ContentType: contentType,
		UploadedAt:  info.ModTime().UTC(),
	}, nil
}

// List walks the store directory and returns objects under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]blob.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []blob.Object{}
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, blob.Object{
			URL:         blob.JoinURL(s.baseURL, key),
			Pathname:    key,
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(key)),
			UploadedAt:  info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []blob.Object{}, nil
		}
		return nil, fmt.Errorf("walk store dir: %w", err)
	}
	return out, nil
}

// Delete removes the object at key. Deleting a missing object is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(clean))); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Key resolves a public URL back to its storage key.
func (s *Store) Key(url string) (string, error) {
	return blob.KeyFromURL(s.baseURL, url)
}

func cleanKey(key string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return clean, nil
}

var _ blob.Store = (*Store)(nil)
