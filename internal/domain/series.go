package domain

import (
	"encoding/json"
	"math"
)

// SeriesTable holds one variable for every time index and series feature.
// Lookups never fail: an empty table, an out-of-range index, or an unknown
// feature all read as 0.
type SeriesTable struct {
	columns map[FeatureID]int
	rows    [][]float64
}

// Len returns the number of time slices, 0 for an absent variable.
func (t SeriesTable) Len() int { return len(t.rows) }

// Empty reports whether the variable was absent from the load.
func (t SeriesTable) Empty() bool { return len(t.rows) == 0 }

// Get returns the value for feature id at time index, or 0 when missing.
func (t SeriesTable) Get(index int, id FeatureID) float64 {
	if index < 0 || index >= len(t.rows) {
		return 0
	}
	col, ok := t.columns[id]
	if !ok {
		return 0
	}
	return t.rows[index][col]
}

// FlowRange is the global scale used by the style mapper: the smallest
// strictly positive flow and the largest flow of a load.
type FlowRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EmptyFlowRange is the range of a load without any positive flow.
func EmptyFlowRange() FlowRange {
	return FlowRange{Min: math.Inf(1), Max: 0}
}

// Empty reports whether the range carries no data.
func (r FlowRange) Empty() bool { return math.IsInf(r.Min, 1) }

// observe folds one flow value into the running range.
func (r *FlowRange) observe(v float64) {
	if v > 0 && v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
}

// MarshalJSON encodes an empty range with a null minimum, since JSON has no infinity.
func (r FlowRange) MarshalJSON() ([]byte, error) {
	type wire struct {
		Min *float64 `json:"min"`
		Max float64  `json:"max"`
	}
	w := wire{Max: r.Max}
	if !r.Empty() {
		w.Min = &r.Min
	}
	return json.Marshal(w)
}

// buildTable copies matrix into a dense table keyed by columns. Short rows and
// NaN cells become 0. When observe is non-nil every stored value is passed to it.
func buildTable(matrix [][]float64, columns map[FeatureID]int, width int, observe func(float64)) SeriesTable {
	if matrix == nil {
		return SeriesTable{}
	}
	rows := make([][]float64, len(matrix))
	for t, src := range matrix {
		row := make([]float64, width)
		for f := 0; f < width && f < len(src); f++ {
			if v := src[f]; !math.IsNaN(v) {
				row[f] = v
			}
		}
		if observe != nil {
			for _, v := range row {
				observe(v)
			}
		}
		rows[t] = row
	}
	return SeriesTable{columns: columns, rows: rows}
}
