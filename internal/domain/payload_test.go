package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPayload = `{
  "geopackage": {"bounds": [-97.5, 30.1, -97.2, 30.4], "feature_ids": ["wb-2", "wb-1"], "count": 2},
  "netcdf": {
    "time_steps": ["2024-01-01T00:00:00", "2024-01-01T01:00:00"],
    "feature_ids": [1, 2],
    "flow": [[5.0, 0.0], [15.0, 3.0]],
    "velocity": [[0.5, 0.1], [0.7, null]],
    "depth": null,
    "num_times": 2,
    "num_features": 2,
    "resample_hours": 1
  },
  "files": {"geopackage": "uploaded.gpkg", "netcdf": "uploaded.nc"}
}`

func TestParseDatasetPayload(t *testing.T) {
	t.Run("combined payload", func(t *testing.T) {
		ds, err := ParseDatasetPayload([]byte(testPayload))
		require.NoError(t, err)

		assert.Equal(t, []string{"wb-1", "wb-2"}, ds.GeometryIDs, "geometry ids are sorted")
		assert.Equal(t, []string{"1", "2"}, ds.SeriesIDs, "numeric series ids decode as strings")
		assert.Equal(t, [4]float64{-97.5, 30.1, -97.2, 30.4}, ds.Bounds)
		assert.Equal(t, [][]float64{{5, 0}, {15, 3}}, ds.Flow)
		assert.Equal(t, [][]float64{{0.5, 0.1}, {0.7, 0}}, ds.Velocity, "null cells read as 0")
		assert.Nil(t, ds.Depth)
		assert.Equal(t, 1, ds.ResampleHours)
	})

	t.Run("streamflow alias", func(t *testing.T) {
		data := []byte(`{"geopackage":{"feature_ids":["1"]},"netcdf":{"time_steps":["t0"],"feature_ids":["1"],"streamflow":[[4.5]]}}`)
		ds, err := ParseDatasetPayload(data)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{4.5}}, ds.Flow)
	})

	t.Run("integral float ids", func(t *testing.T) {
		data := []byte(`{"geopackage":{"feature_ids":["wb-7"]},"netcdf":{"feature_ids":[7.0],"flow":[]}}`)
		ds, err := ParseDatasetPayload(data)
		require.NoError(t, err)
		assert.Equal(t, []string{"7"}, ds.SeriesIDs)
	})

	t.Run("ids beyond the exact integer range", func(t *testing.T) {
		data := []byte(`{"geopackage":{"feature_ids":["1"]},"netcdf":{"feature_ids":[9223372036854775807, 12345678901234567890, 1e20, 7.5],"flow":[]}}`)
		ds, err := ParseDatasetPayload(data)
		require.NoError(t, err)
		assert.Equal(t, []string{"9223372036854775807", "12345678901234567890", "1e20", "7.5"}, ds.SeriesIDs)
	})

	t.Run("non-finite cells read as 0", func(t *testing.T) {
		data := []byte(`{"geopackage":{"feature_ids":["NaN-creek", "2"]},"netcdf":{"time_steps":["t0","t1"],"feature_ids":["NaN-creek","2"],` +
			`"flow":[[NaN, 4.0],[Infinity, -Infinity]],"depth":[[1.5, NaN],[null, 2.0]]}}`)
		ds, err := ParseDatasetPayload(data)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0, 4}, {0, 0}}, ds.Flow)
		assert.Equal(t, [][]float64{{1.5, 0}, {0, 2}}, ds.Depth)
		assert.Equal(t, []string{"2", "NaN-creek"}, ds.GeometryIDs, "string contents are untouched")
		assert.Equal(t, []string{"NaN-creek", "2"}, ds.SeriesIDs)
	})

	t.Run("service error", func(t *testing.T) {
		_, err := ParseDatasetPayload([]byte(`{"error":"Flow variable not found"}`))
		require.ErrorIs(t, err, ErrDatasetService)
		assert.Contains(t, err.Error(), "Flow variable not found")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseDatasetPayload([]byte("{invalid json"))
		assert.Error(t, err)
	})

	t.Run("bad flow matrix", func(t *testing.T) {
		_, err := ParseDatasetPayload([]byte(`{"netcdf":{"flow":"nope"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flow matrix")
	})
}

func TestEncodeDatasetPayload_ParsesBack(t *testing.T) {
	ds := Dataset{
		GeometryIDs:   []string{"wb-1", "wb-2"},
		Bounds:        [4]float64{1, 2, 3, 4},
		Times:         []string{"t0", "t1"},
		SeriesIDs:     []string{"1", "2"},
		Flow:          [][]float64{{1, 2}, {3, 4}},
		ResampleHours: 2,
	}

	data, err := EncodeDatasetPayload(ds)
	require.NoError(t, err)

	got, err := ParseDatasetPayload(data)
	require.NoError(t, err)
	assert.Equal(t, ds.GeometryIDs, got.GeometryIDs)
	assert.Equal(t, ds.SeriesIDs, got.SeriesIDs)
	assert.Equal(t, ds.Flow, got.Flow)
	assert.Equal(t, ds.Bounds, got.Bounds)
	assert.Equal(t, 2, got.ResampleHours)
}

func TestReplaceNonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"untouched", `{"a":[1,2]}`, `{"a":[1,2]}`},
		{"bare tokens", `[NaN,Infinity,-Infinity]`, `[null,null,null]`},
		{"inside strings", `{"id":"NaN \"Infinity\"","v":NaN}`, `{"id":"NaN \"Infinity\"","v":null}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, string(replaceNonFinite([]byte(tc.in))))
		})
	}
}
