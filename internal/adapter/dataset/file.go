package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
)

// FileLoader reads a dataset payload from disk on every load and resamples it
// locally, standing in for the dataset service.
type FileLoader struct {
	path   string
	logger *slog.Logger
}

// NewFileLoader creates a loader for the payload at path.
func NewFileLoader(path string, logger *slog.Logger) *FileLoader {
	return &FileLoader{path: path, logger: logger}
}

// Load reads and decodes the file, then averages it over interval steps.
func (l *FileLoader) Load(ctx context.Context, interval int) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read dataset file: %w", err)
	}
	ds, err := domain.ParseDatasetPayload(data)
	if err != nil {
		return domain.Dataset{}, err
	}
	l.logger.Debug("dataset file read", "path", l.path, "num_times", len(ds.Times), "resample_hours", interval)
	return domain.ResampleDataset(ds, interval), nil
}
