package domain

import (
	"errors"
	"fmt"
)

// Variable names one of the per-feature scalar series carried by a dataset.
type Variable string

const (
	Flow     Variable = "flow"
	Velocity Variable = "velocity"
	Depth    Variable = "depth"
)

// Variables lists every tracked variable in display order.
var Variables = []Variable{Flow, Velocity, Depth}

var (
	// ErrMalformedDataset marks a load whose parts do not agree in shape.
	ErrMalformedDataset = errors.New("malformed dataset")

	// ErrDatasetService marks an error reported by the dataset service itself.
	ErrDatasetService = errors.New("dataset service error")

	// ErrUnknownVariable is returned by ParseVariable for unrecognized names.
	ErrUnknownVariable = errors.New("unknown variable")
)

// ParseVariable validates a variable name.
func ParseVariable(name string) (Variable, error) {
	switch v := Variable(name); v {
	case Flow, Velocity, Depth:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
}

// Dataset is the decoded load handed back by the dataset service. Ids are raw
// (not yet normalized) and matrices are row-major by time.
type Dataset struct {
	GeometryIDs   []string
	Bounds        [4]float64 // minX, minY, maxX, maxY
	Times         []string
	SeriesIDs     []string
	Flow          [][]float64
	Velocity      [][]float64 // nil when the run has no velocity output
	Depth         [][]float64 // nil when the run has no depth output
	ResampleHours int
}

// Matrix returns the raw matrix for v, or nil when the variable is absent.
func (d Dataset) Matrix(v Variable) [][]float64 {
	switch v {
	case Flow:
		return d.Flow
	case Velocity:
		return d.Velocity
	case Depth:
		return d.Depth
	default:
		return nil
	}
}

// seriesIDs returns the ids labelling matrix columns. A dataset without a
// separate series id list shares the geometry ordering.
func (d Dataset) seriesIDs() []string {
	if len(d.SeriesIDs) == 0 {
		return d.GeometryIDs
	}
	return d.SeriesIDs
}

// Validate checks that the time axis and every present matrix agree in length.
func (d Dataset) Validate() error {
	if len(d.GeometryIDs) == 0 {
		return fmt.Errorf("%w: empty feature set", ErrMalformedDataset)
	}
	numTimes := len(d.Times)
	if len(d.Flow) != numTimes {
		return fmt.Errorf("%w: flow has %d rows, time axis has %d steps", ErrMalformedDataset, len(d.Flow), numTimes)
	}
	for _, v := range []Variable{Velocity, Depth} {
		m := d.Matrix(v)
		if m != nil && len(m) != numTimes {
			return fmt.Errorf("%w: %s has %d rows, time axis has %d steps", ErrMalformedDataset, v, len(m), numTimes)
		}
	}
	return nil
}
