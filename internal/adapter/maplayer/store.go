// Package maplayer holds the frame the browser map draws and fans frames out
// to additional layers.
package maplayer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/streamflow-animator/internal/render"
)

// Store keeps the latest frame for the browser map, which polls it over HTTP.
// It reports ready only after the map has attached by fetching a frame.
type Store struct {
	attached atomic.Bool

	mu      sync.RWMutex
	frame   render.Frame
	version uint64
}

// NewStore creates a detached, empty store.
func NewStore() *Store {
	return &Store{}
}

// Attach marks the map layer as present.
func (s *Store) Attach() {
	s.attached.Store(true)
}

// Ready reports whether a map has attached.
func (s *Store) Ready() bool {
	return s.attached.Load()
}

// Apply replaces the stored frame.
func (s *Store) Apply(_ context.Context, frame render.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
	s.version++
	return nil
}

// Latest returns the stored frame and its version. ok is false until the
// first frame arrives.
func (s *Store) Latest() (frame render.Frame, version uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.version, s.version > 0
}
