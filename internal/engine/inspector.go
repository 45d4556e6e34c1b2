package engine

import (
	"sync"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
)

// InspectionState is the chart panel's selection. It outlives reloads.
type InspectionState struct {
	Selected     domain.FeatureID         `json:"selected"`
	HasSelection bool                     `json:"has_selection"`
	Visible      map[domain.Variable]bool `json:"visible"`
}

// Inspector tracks the selected feature and which variables the chart shows.
type Inspector struct {
	mu           sync.Mutex
	selected     domain.FeatureID
	hasSelection bool
	visible      map[domain.Variable]bool
}

// NewInspector starts with nothing selected and every variable visible.
func NewInspector() *Inspector {
	visible := make(map[domain.Variable]bool, len(domain.Variables))
	for _, v := range domain.Variables {
		visible[v] = true
	}
	return &Inspector{visible: visible}
}

// Select marks id as the inspected feature and returns its full series from snap.
func (in *Inspector) Select(snap *domain.Snapshot, id domain.FeatureID) domain.Series {
	in.mu.Lock()
	in.selected = id
	in.hasSelection = true
	in.mu.Unlock()
	return snap.ExtractSeries(id)
}

// ToggleVariable flips the visibility of v and returns the new value.
func (in *Inspector) ToggleVariable(v domain.Variable) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.visible[v] = !in.visible[v]
	return in.visible[v]
}

// Current re-extracts the selected feature's series from snap, so the chart
// follows the time axis of whatever snapshot is current.
func (in *Inspector) Current(snap *domain.Snapshot) (domain.Series, bool) {
	in.mu.Lock()
	id, ok := in.selected, in.hasSelection
	in.mu.Unlock()
	if !ok || snap == nil {
		return domain.Series{}, false
	}
	return snap.ExtractSeries(id), true
}

// State returns a copy of the inspection state.
func (in *Inspector) State() InspectionState {
	in.mu.Lock()
	defer in.mu.Unlock()
	visible := make(map[domain.Variable]bool, len(in.visible))
	for k, v := range in.visible {
		visible[k] = v
	}
	return InspectionState{Selected: in.selected, HasSelection: in.hasSelection, Visible: visible}
}
