package domain

// Series is one feature's full time series, aligned index-for-index with the
// time axis it was extracted from. A variable absent from the load yields an
// empty slice.
type Series struct {
	FeatureID FeatureID `json:"feature_id"`
	Times     []string  `json:"times"`
	Flow      []float64 `json:"flow"`
	Velocity  []float64 `json:"velocity"`
	Depth     []float64 `json:"depth"`
}

// ExtractSeries pulls one value per timestep for id. It reads only the
// requested column, so it costs O(numTimes) regardless of the feature count.
func (s *Snapshot) ExtractSeries(id FeatureID) Series {
	return Series{
		FeatureID: id,
		Times:     append([]string(nil), s.Times...),
		Flow:      extractColumn(s.Flow, id),
		Velocity:  extractColumn(s.Velocity, id),
		Depth:     extractColumn(s.Depth, id),
	}
}

func extractColumn(t SeriesTable, id FeatureID) []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.Get(i, id)
	}
	return out
}

// Resample returns a chart-only copy of the series averaged over interval
// steps. The snapshot's time axis is untouched.
func (s Series) Resample(interval int) Series {
	if interval <= 1 {
		return s
	}
	return Series{
		FeatureID: s.FeatureID,
		Times:     ResampleTimes(s.Times, interval),
		Flow:      Resample(s.Flow, interval),
		Velocity:  Resample(s.Velocity, interval),
		Depth:     Resample(s.Depth, interval),
	}
}

// Len returns the number of timesteps in the series.
func (s Series) Len() int { return len(s.Times) }
