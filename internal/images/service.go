package images

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/shared/storage/blob"
)

// MaxUploadBytes is the per-image size cap. A file of exactly this size is
// accepted; one byte more is rejected.
const MaxUploadBytes = 10 << 20

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/jpg":     {},
	"image/png":     {},
	"image/webp":    {},
	"image/svg+xml": {},
}

// AllowedMimeType reports whether contentType is an accepted image type.
// GIFs are deliberately excluded.
func AllowedMimeType(contentType string) bool {
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	_, ok := allowedMimeTypes[mt]
	return ok
}

// Service is the storage gateway for image memories. All operations are
// scoped to the owner; prefix authorization happens here, never in callers.
type Service struct {
	Store blob.Store
}

// Upload validates and stores one image for the owner. The storage key is
// "<ownerID>/<epochMillis>-<random base36>.<ext>", unique in practice without
// relying on a store-side suffix feature.
func (s *Service) Upload(ctx context.Context, ownerID, fileName, contentType string, size int64, r io.Reader) (Image, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Image{}, ErrUnauthenticated
	}
	if !AllowedMimeType(contentType) {
		return Image{}, ErrInvalidType
	}
	if size > MaxUploadBytes {
		return Image{}, ErrTooLarge
	}

	key := newStorageKey(ownerID, fileName)
	obj, err := s.Store.Put(ctx, key, contentType, size, r)
	if err != nil {
		return Image{}, fmt.Errorf("store put: %w", err)
	}

	return Image{
		URL:        obj.URL,
		Filename:   obj.Pathname,
		Size:       obj.Size,
		UploadedAt: obj.UploadedAt,
		MimeType:   contentType,
	}, nil
}

// List returns the owner's images, newest first. The store imposes no
// ordering of its own, so ordering is applied after the fetch.
func (s *Service) List(ctx context.Context, ownerID string) ([]Image, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthenticated
	}

	objs, err := s.Store.List(ctx, OwnerPrefix(ownerID))
	if err != nil {
		return nil, fmt.Errorf("store list: %w", err)
	}

	out := make([]Image, 0, len(objs))
	for _, obj := range objs {
		out = append(out, Image{
			URL:        obj.URL,
			Filename:   obj.Pathname,
			Size:       obj.Size,
			UploadedAt: obj.UploadedAt,
			MimeType:   obj.ContentType,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// Delete permanently removes the image at url. The url must resolve to a key
// under the owner's prefix; anything else is ErrUnauthorized.
func (s *Service) Delete(ctx context.Context, ownerID, url string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrUnauthenticated
	}

	key, err := s.Store.Key(url)
	if err != nil {
		// A URL this store never issued cannot be proven owned.
		return ErrUnauthorized
	}
	if !strings.HasPrefix(key, OwnerPrefix(ownerID)) {
		return ErrUnauthorized
	}

	if err := s.Store.Delete(ctx, key); err != nil {
		return fmt.Errorf("store delete: %w", err)
	}
	return nil
}

func newStorageKey(ownerID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%d-%s%s", ownerID, time.Now().UnixMilli(), randomToken(), ext)
}

func randomToken() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36)
}
