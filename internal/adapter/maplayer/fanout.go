package maplayer

import (
	"context"
	"errors"

	"github.com/couchcryptid/streamflow-animator/internal/render"
)

// Fanout presents several layers as one. It is ready when any layer is ready
// and applies every frame to all of them.
type Fanout []render.Layer

// Ready reports whether at least one layer can take a frame.
func (f Fanout) Ready() bool {
	for _, l := range f {
		if l.Ready() {
			return true
		}
	}
	return false
}

// Apply sends frame to every layer and joins their errors.
func (f Fanout) Apply(ctx context.Context, frame render.Frame) error {
	var errs []error
	for _, l := range f {
		if err := l.Apply(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
