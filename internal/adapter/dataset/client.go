package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
)

// Loader fetches a dataset resampled to interval hours.
type Loader interface {
	Load(ctx context.Context, interval int) (domain.Dataset, error)
}

// Client loads datasets from the dataset service over HTTP. The service does
// the resampling, so the returned time axis is already reduced.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a dataset service client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Load requests the configured files resampled to interval hours.
func (c *Client) Load(ctx context.Context, interval int) (domain.Dataset, error) {
	params := url.Values{"resample": {strconv.Itoa(interval)}}
	fullURL := c.baseURL + "/api/load-local-files?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("dataset request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read dataset response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// The service reports failures as {"error": "..."}; prefer that message.
		if _, perr := domain.ParseDatasetPayload(body); errors.Is(perr, domain.ErrDatasetService) {
			return domain.Dataset{}, fmt.Errorf("status %d: %w", resp.StatusCode, perr)
		}
		return domain.Dataset{}, fmt.Errorf("%w: status %d: %s", domain.ErrDatasetService, resp.StatusCode, body)
	}

	ds, err := domain.ParseDatasetPayload(body)
	if err != nil {
		return domain.Dataset{}, err
	}
	c.logger.Debug("dataset fetched",
		"resample_hours", interval,
		"num_times", len(ds.Times),
		"num_features", len(ds.GeometryIDs),
		"duration", time.Since(start),
	)
	return ds, nil
}
