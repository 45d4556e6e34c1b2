package domain

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconcileFeatureIDs_PrefixMismatchAligns(t *testing.T) {
	r := ReconcileFeatureIDs(Dataset{
		GeometryIDs: []string{"wb-1", "wb-2", "wb-3"},
		SeriesIDs:   []string{"1", "2", "3"},
	})

	assert.Equal(t, 3, r.Matched)
	assert.True(t, r.Aligned())
}

func TestReconcileFeatureIDs_ReportsBothSides(t *testing.T) {
	r := ReconcileFeatureIDs(Dataset{
		GeometryIDs: []string{"wb-1", "wb-2"},
		SeriesIDs:   []string{"2", "9"},
	})

	assert.Equal(t, 1, r.Matched)
	assert.Equal(t, []FeatureID{"wb-1"}, r.GeometryOnly)
	assert.Equal(t, []FeatureID{"wb-9"}, r.SeriesOnly)
	assert.False(t, r.Aligned())
}

func TestReconcileFeatureIDs_NoSeriesIDsSharesGeometry(t *testing.T) {
	r := ReconcileFeatureIDs(Dataset{GeometryIDs: []string{"1", "wb-2"}})

	assert.Equal(t, 2, r.Matched)
	assert.True(t, r.Aligned())
}

func TestLogReconciliation_WarnsOnMismatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogReconciliation(Reconciliation{Matched: 1, SeriesOnly: []FeatureID{"wb-9"}}, logger)

	assert.Contains(t, buf.String(), "partially aligned")
	assert.Contains(t, buf.String(), "series_only=1")
}

func TestLogReconciliation_QuietWhenAligned(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogReconciliation(Reconciliation{Matched: 4}, logger)

	assert.Empty(t, buf.String())
}
