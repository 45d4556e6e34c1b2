package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fourStepPayload = `{
  "geopackage": {"feature_ids": ["1", "2"]},
  "netcdf": {
    "time_steps": ["t0", "t1", "t2", "t3"],
    "streamflow": [[1, 10], [3, 30], [5, 50], [7, 70]]
  }
}`

func writePayload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileLoader_ResamplesLocally(t *testing.T) {
	l := NewFileLoader(writePayload(t, fourStepPayload), discardLogger())

	ds, err := l.Load(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"t0", "t2"}, ds.Times)
	assert.Equal(t, [][]float64{{2, 20}, {6, 60}}, ds.Flow)
	assert.Equal(t, 2, ds.ResampleHours)
}

func TestFileLoader_IdentityInterval(t *testing.T) {
	l := NewFileLoader(writePayload(t, fourStepPayload), discardLogger())

	ds, err := l.Load(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, ds.Times, 4)
	assert.Equal(t, []float64{7, 70}, ds.Flow[3])
}

func TestFileLoader_MissingFile(t *testing.T) {
	l := NewFileLoader(filepath.Join(t.TempDir(), "absent.json"), discardLogger())

	_, err := l.Load(context.Background(), 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read dataset file")
}

func TestFileLoader_RereadsOnEveryLoad(t *testing.T) {
	path := writePayload(t, fourStepPayload)
	l := NewFileLoader(path, discardLogger())

	_, err := l.Load(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o600))
	ds, err := l.Load(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, ds.Times, 2)
}
