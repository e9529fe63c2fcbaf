// Package gallery keeps a client-side reflection of the owner's stored
// images. It never patches state incrementally: every mutation is followed by
// a full re-list so local state cannot drift from storage.
package gallery

import (
	"context"
	"strings"
	"sync"

	"github.com/Kantheephob/Nostalgia-Life-Log/internal/images"
)

// Gateway lists and deletes images for the authenticated owner.
type Gateway interface {
	List(ctx context.Context) ([]images.Image, error)
	Delete(ctx context.Context, url string) error
}

// Store caches the current owner's gallery listing.
type Store struct {
	gw Gateway

	mu     sync.Mutex
	owner  string
	gen    uint64
	images []images.Image
}

// New constructs a Store with no owner set.
func New(gw Gateway) *Store {
	return &Store{gw: gw}
}

// SetOwner switches the active owner and clears cached state immediately, so
// the previous owner's images are never visible while the next listing is in
// flight. In-flight refreshes started before the switch are discarded.
func (s *Store) SetOwner(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == ownerID {
		return
	}
	s.owner = ownerID
	s.gen++
	s.images = nil
}

// Owner returns the active owner.
func (s *Store) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Images returns a copy of the cached listing.
func (s *Store) Images() []images.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]images.Image, len(s.images))
	copy(out, s.images)
	return out
}

// Count returns the cached image count.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Refresh replaces the cached listing with the authoritative one from
// storage. With no owner set it just clears the cache.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	owner := s.owner
	gen := s.gen
	s.mu.Unlock()

	if owner == "" {
		s.mu.Lock()
		s.images = nil
		s.mu.Unlock()
		return nil
	}

	listing, err := s.gw.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Owner changed while the list was in flight; the result belongs to
		// the previous identity.
		return nil
	}
	s.images = listing
	return nil
}

// Delete removes the image at url: the owner-prefix check runs first, then
// the gateway call, then an optimistic local removal, then a full refresh.
func (s *Store) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	owner := s.owner
	s.mu.Unlock()

	if owner == "" {
		return images.ErrUnauthenticated
	}
	if !strings.Contains(url, images.OwnerPrefix(owner)) {
		return images.ErrUnauthorized
	}

	if err := s.gw.Delete(ctx, url); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.images[:0]
	for _, img := range s.images {
		if img.URL != url {
			kept = append(kept, img)
		}
	}
	s.images = kept
	s.mu.Unlock()

	return s.Refresh(ctx)
}
