package domain

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one immutable, internally consistent load: the feature set, the
// time axis, every series table, and the flow range. A reload or resample
// produces a new Snapshot; nothing in an existing one is ever mutated.
type Snapshot struct {
	ID            string
	Features      []FeatureID
	Times         []string
	Bounds        [4]float64
	ResampleHours int
	Flow          SeriesTable
	Velocity      SeriesTable
	Depth         SeriesTable
	Range         FlowRange
	LoadedAt      time.Time
}

// Reading is the value of every variable for one feature at one time index.
type Reading struct {
	Flow     float64 `json:"flow"`
	Velocity float64 `json:"velocity"`
	Depth    float64 `json:"depth"`
}

// BuildSnapshot validates ds and indexes it by normalized feature id in a
// single pass over every matrix, computing the flow range along the way.
func BuildSnapshot(ds Dataset) (*Snapshot, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	seriesRaw := ds.seriesIDs()
	columns := make(map[FeatureID]int, len(seriesRaw))
	for f, raw := range seriesRaw {
		id := NormalizeFeatureID(raw)
		if _, dup := columns[id]; !dup {
			columns[id] = f
		}
	}
	width := len(seriesRaw)

	flowRange := EmptyFlowRange()
	flow := buildTable(ds.Flow, columns, width, flowRange.observe)

	resampleHours := ds.ResampleHours
	if resampleHours < 1 {
		resampleHours = 1
	}

	return &Snapshot{
		ID:            uuid.NewString(),
		Features:      normalizeAll(ds.GeometryIDs),
		Times:         append([]string(nil), ds.Times...),
		Bounds:        ds.Bounds,
		ResampleHours: resampleHours,
		Flow:          flow,
		Velocity:      buildTable(ds.Velocity, columns, width, nil),
		Depth:         buildTable(ds.Depth, columns, width, nil),
		Range:         flowRange,
		LoadedAt:      clock.Now(),
	}, nil
}

// NumTimes returns the length of the time axis.
func (s *Snapshot) NumTimes() int { return len(s.Times) }

// NumFeatures returns the size of the feature set.
func (s *Snapshot) NumFeatures() int { return len(s.Features) }

// TimeAt returns the timestamp label at index, or "" when out of range.
func (s *Snapshot) TimeAt(index int) string {
	if index < 0 || index >= len(s.Times) {
		return ""
	}
	return s.Times[index]
}

// Table returns the series table for v. Unknown variables read as empty.
func (s *Snapshot) Table(v Variable) SeriesTable {
	switch v {
	case Flow:
		return s.Flow
	case Velocity:
		return s.Velocity
	case Depth:
		return s.Depth
	default:
		return SeriesTable{}
	}
}

// ValueAt reads every variable for id at index without touching styles.
func (s *Snapshot) ValueAt(id FeatureID, index int) Reading {
	return Reading{
		Flow:     s.Flow.Get(index, id),
		Velocity: s.Velocity.Get(index, id),
		Depth:    s.Depth.Get(index, id),
	}
}
