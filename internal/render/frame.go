package render

import (
	"github.com/couchcryptid/streamflow-animator/internal/domain"
)

// FeatureStyle is the per-feature paint instruction inside a frame.
type FeatureStyle struct {
	FeatureID domain.FeatureID `json:"id"`
	Color     string           `json:"color"`
	Width     float64          `json:"width"`
}

// Frame carries the style of every feature at one time index. Layers apply a
// frame in one bulk update.
type Frame struct {
	SnapshotID string         `json:"snapshot_id"`
	Index      int            `json:"index"`
	Time       string         `json:"time"`
	Styles     []FeatureStyle `json:"styles"`
}

// BuildFrame styles every feature of snap at index using the snapshot's flow range.
func BuildFrame(snap *domain.Snapshot, index int) Frame {
	styles := make([]FeatureStyle, len(snap.Features))
	for i, id := range snap.Features {
		st := domain.StyleFor(snap.Flow.Get(index, id), snap.Range)
		styles[i] = FeatureStyle{FeatureID: id, Color: st.Color.Hex(), Width: st.Width}
	}
	return Frame{
		SnapshotID: snap.ID,
		Index:      index,
		Time:       snap.TimeAt(index),
		Styles:     styles,
	}
}
