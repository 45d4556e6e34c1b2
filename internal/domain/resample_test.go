package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestResample_Identity(t *testing.T) {
	series := []float64{3, 1, 4, 1, 5}
	assert.Equal(t, series, Resample(series, 1))
	assert.Equal(t, series, Resample(series, 0), "intervals below 1 are treated as identity")
}

func TestResample_Averaging(t *testing.T) {
	assert.Equal(t, []float64{15, 35}, Resample([]float64{10, 20, 30, 40}, 2))
	assert.Equal(t, []float64{2, 5}, Resample([]float64{1, 2, 3, 5}, 3), "short final block")
}

func TestResample_Length(t *testing.T) {
	for n := 0; n <= 12; n++ {
		series := make([]float64, n)
		for k := 1; k <= 5; k++ {
			want := (n + k - 1) / k
			assert.Len(t, Resample(series, k), want, "n=%d k=%d", n, k)
		}
	}
}

func TestResampleTimes(t *testing.T) {
	times := []string{"t0", "t1", "t2", "t3", "t4"}
	assert.Equal(t, []string{"t0", "t2", "t4"}, ResampleTimes(times, 2))
	assert.Equal(t, times, ResampleTimes(times, 1))
}

func TestResampleMatrix(t *testing.T) {
	m := [][]float64{
		{10, 1},
		{20, 3},
		{30},
	}
	want := [][]float64{
		{15, 2},
		{30, 0},
	}
	if diff := cmp.Diff(want, ResampleMatrix(m, 2)); diff != "" {
		t.Fatalf("resampled matrix mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, ResampleMatrix(nil, 3))
}

func TestResampleDataset(t *testing.T) {
	ds := Dataset{
		GeometryIDs: []string{"1", "2"},
		Times:       []string{"t0", "t1", "t2", "t3"},
		Flow:        [][]float64{{10, 0}, {20, 2}, {30, 4}, {40, 6}},
		Velocity:    [][]float64{{1, 1}, {1, 1}, {3, 3}, {3, 3}},
	}

	got := ResampleDataset(ds, 2)

	assert.Equal(t, []string{"t0", "t2"}, got.Times)
	assert.Equal(t, [][]float64{{15, 1}, {35, 5}}, got.Flow)
	assert.Equal(t, [][]float64{{1, 1}, {3, 3}}, got.Velocity)
	assert.Nil(t, got.Depth)
	assert.Equal(t, 2, got.ResampleHours)
	assert.Len(t, ds.Times, 4, "input dataset is not modified")

	snap, err := BuildSnapshot(got)
	if assert.NoError(t, err) {
		assert.Equal(t, FlowRange{Min: 1, Max: 35}, snap.Range)
	}
}
