package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// flowAliases lists the payload keys accepted for the flow matrix, in the
// order the routing tools tend to name it.
var flowAliases = []string{"flow", "streamflow", "q", "discharge"}

// rawID decodes a feature id that may arrive as a JSON string or number.
// NetCDF feature_id dimensions are integers; GeoPackage ids are strings.
type rawID string

func (r *rawID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = rawID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("feature id %s: %w", data, err)
	}
	if i, err := n.Int64(); err == nil {
		*r = rawID(strconv.FormatInt(i, 10))
		return nil
	}
	// Integral floats ("1234.0") still name feature 1234. Anything beyond the
	// exactly representable integer range keeps its literal text.
	if f, err := n.Float64(); err == nil && math.Abs(f) <= maxExactFloatInt && f == math.Trunc(f) {
		*r = rawID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*r = rawID(n.String())
	return nil
}

// maxExactFloatInt is 2^53, the largest magnitude below which every integer
// has an exact float64 form.
const maxExactFloatInt = 1 << 53

// nonFiniteLiterals are the tokens Python's json module writes for IEEE
// special values. Longest first, so "-Infinity" wins over "Infinity".
var nonFiniteLiterals = [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("NaN")}

// replaceNonFinite rewrites bare NaN and Infinity tokens outside string
// literals to null, which decodes to 0 in a float matrix. Input without such
// tokens is returned unchanged.
func replaceNonFinite(data []byte) []byte {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data
	}
	out := make([]byte, 0, len(data))
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		matched := false
		for _, lit := range nonFiniteLiterals {
			if bytes.HasPrefix(data[i:], lit) {
				out = append(out, "null"...)
				i += len(lit) - 1
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, c)
		}
	}
	return out
}

// geometrySection is the decoded GeoPackage part of the payload.
type geometrySection struct {
	Bounds     []float64 `json:"bounds"`
	FeatureIDs []rawID   `json:"feature_ids"`
	Count      int       `json:"count"`
}

// seriesSection is the decoded NetCDF part of the payload. The flow matrix is
// kept raw until the alias lookup picks a key.
type seriesSection struct {
	TimeSteps     []string                   `json:"time_steps"`
	FeatureIDs    []rawID                    `json:"feature_ids"`
	Velocity      [][]float64                `json:"velocity"`
	Depth         [][]float64                `json:"depth"`
	NumTimes      int                        `json:"num_times"`
	NumFeatures   int                        `json:"num_features"`
	ResampleHours int                        `json:"resample_hours"`
	Variables     map[string]json.RawMessage `json:"-"`
}

func (s *seriesSection) UnmarshalJSON(data []byte) error {
	type plain seriesSection
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	return json.Unmarshal(data, &s.Variables)
}

// datasetPayload is the combined response of the dataset service.
type datasetPayload struct {
	Geopackage geometrySection   `json:"geopackage"`
	NetCDF     seriesSection     `json:"netcdf"`
	Files      map[string]string `json:"files,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ParseDatasetPayload decodes a dataset service response into a Dataset.
// Geometry ids are sorted for a stable feature order; series ids keep their
// order because they label matrix columns. NaN and Infinity cells read as 0.
// A payload carrying an "error" field is returned as ErrDatasetService.
func ParseDatasetPayload(data []byte) (Dataset, error) {
	var p datasetPayload
	if err := json.Unmarshal(replaceNonFinite(data), &p); err != nil {
		return Dataset{}, fmt.Errorf("parse dataset payload: %w", err)
	}
	if p.Error != "" {
		return Dataset{}, fmt.Errorf("%w: %s", ErrDatasetService, p.Error)
	}

	flow, err := p.NetCDF.flowMatrix()
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{
		GeometryIDs:   idStrings(p.Geopackage.FeatureIDs),
		Times:         p.NetCDF.TimeSteps,
		SeriesIDs:     idStrings(p.NetCDF.FeatureIDs),
		Flow:          flow,
		Velocity:      p.NetCDF.Velocity,
		Depth:         p.NetCDF.Depth,
		ResampleHours: p.NetCDF.ResampleHours,
	}
	slices.Sort(ds.GeometryIDs)
	if len(p.Geopackage.Bounds) == 4 {
		copy(ds.Bounds[:], p.Geopackage.Bounds)
	}
	return ds, nil
}

// flowMatrix returns the first flow alias present in the payload.
func (s seriesSection) flowMatrix() ([][]float64, error) {
	for _, key := range flowAliases {
		raw, ok := s.Variables[key]
		if !ok || string(bytes.TrimSpace(raw)) == "null" {
			continue
		}
		var m [][]float64
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parse %s matrix: %w", key, err)
		}
		return m, nil
	}
	return nil, nil
}

// EncodeDatasetPayload writes ds in the dataset service's wire shape.
func EncodeDatasetPayload(ds Dataset) ([]byte, error) {
	type seriesWire struct {
		TimeSteps     []string    `json:"time_steps"`
		FeatureIDs    []string    `json:"feature_ids"`
		Flow          [][]float64 `json:"flow"`
		Velocity      [][]float64 `json:"velocity"`
		Depth         [][]float64 `json:"depth"`
		NumTimes      int         `json:"num_times"`
		NumFeatures   int         `json:"num_features"`
		ResampleHours int         `json:"resample_hours"`
	}
	type geometryWire struct {
		Bounds     []float64 `json:"bounds"`
		FeatureIDs []string  `json:"feature_ids"`
		Count      int       `json:"count"`
	}
	series := ds.seriesIDs()
	return json.MarshalIndent(struct {
		Geopackage geometryWire `json:"geopackage"`
		NetCDF     seriesWire   `json:"netcdf"`
	}{
		Geopackage: geometryWire{
			Bounds:     ds.Bounds[:],
			FeatureIDs: ds.GeometryIDs,
			Count:      len(ds.GeometryIDs),
		},
		NetCDF: seriesWire{
			TimeSteps:     ds.Times,
			FeatureIDs:    series,
			Flow:          ds.Flow,
			Velocity:      ds.Velocity,
			Depth:         ds.Depth,
			NumTimes:      len(ds.Times),
			NumFeatures:   len(series),
			ResampleHours: max(ds.ResampleHours, 1),
		},
	}, "", "  ")
}

func idStrings(ids []rawID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
