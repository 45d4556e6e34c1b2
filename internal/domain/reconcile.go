package domain

import (
	"log/slog"
)

// Reconciliation summarizes how the geometry and series id spaces line up
// after normalization.
type Reconciliation struct {
	Matched      int
	GeometryOnly []FeatureID // drawn on the map but never carry data
	SeriesOnly   []FeatureID // carry data but have no geometry
}

// Aligned reports whether both id spaces name exactly the same features.
func (r Reconciliation) Aligned() bool {
	return len(r.GeometryOnly) == 0 && len(r.SeriesOnly) == 0
}

// ReconcileFeatureIDs compares the normalized geometry ids against the
// normalized series ids. A dataset without series ids shares the geometry
// ordering and is aligned by construction.
func ReconcileFeatureIDs(ds Dataset) Reconciliation {
	geometry := normalizeAll(ds.GeometryIDs)
	series := normalizeAll(ds.seriesIDs())

	inSeries := make(map[FeatureID]struct{}, len(series))
	for _, id := range series {
		inSeries[id] = struct{}{}
	}

	var r Reconciliation
	inGeometry := make(map[FeatureID]struct{}, len(geometry))
	for _, id := range geometry {
		inGeometry[id] = struct{}{}
		if _, ok := inSeries[id]; ok {
			r.Matched++
			continue
		}
		r.GeometryOnly = append(r.GeometryOnly, id)
	}
	for _, id := range series {
		if _, ok := inGeometry[id]; !ok {
			r.SeriesOnly = append(r.SeriesOnly, id)
		}
	}
	return r
}

// LogReconciliation reports id mismatches. Unmatched features still render
// (as dry), so a mismatch is a warning and never a load failure.
func LogReconciliation(r Reconciliation, logger *slog.Logger) {
	if r.Aligned() {
		logger.Debug("feature ids aligned", "matched", r.Matched)
		return
	}
	logger.Warn("feature ids partially aligned",
		"matched", r.Matched,
		"geometry_only", len(r.GeometryOnly),
		"series_only", len(r.SeriesOnly),
		"sample_geometry_only", sample(r.GeometryOnly, 5),
		"sample_series_only", sample(r.SeriesOnly, 5),
	)
}

func sample(ids []FeatureID, n int) []FeatureID {
	if len(ids) <= n {
		return ids
	}
	return ids[:n]
}
