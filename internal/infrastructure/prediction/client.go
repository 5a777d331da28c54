package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

const (
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 512
)

// Client posts anomaly batches to the external scoring service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Predictor = (*Client)(nil)

// NewClient creates a reusable HTTP client. A non-positive timeout falls
// back to DefaultTimeout.
func NewClient(endpoint string, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   strings.TrimSpace(apiKey),
		http:     &http.Client{Timeout: timeout},
	}
}

// Predict sends the whole batch in one call. Any failure, including an
// unconfigured endpoint, is logged and reported as a failed batch.
func (c *Client) Predict(ctx context.Context, batch []ports.PredictionRequest) ports.BatchResult {
	if ctx == nil {
		ctx = context.Background()
	}
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "prediction.client"),
		slog.Int("batch_size", len(batch)),
	)

	if len(batch) == 0 {
		return ports.BatchResult{Status: ports.PredictionStatusSuccess, Results: []ports.PredictionResult{}}
	}

	started := time.Now()
	result, err := c.post(ctx, batch)
	if err != nil {
		logging.Warn(logCtx, "prediction batch failed, using fallback values",
			slog.Duration("elapsed", time.Since(started)),
			slog.Any("err", errs.Loggable(err)),
		)
		return FailedBatch(len(batch))
	}

	if result.Results == nil {
		result.Results = []ports.PredictionResult{}
	}
	logging.Info(logCtx, "prediction batch scored",
		slog.String("status", result.Status),
		slog.Int("successful", result.BatchInfo.SuccessfulPredictions),
		slog.Int("failed", result.BatchInfo.FailedPredictions),
		slog.Duration("elapsed", time.Since(started)),
	)
	return result
}

// Close releases idle connections held by the transport.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// FailedBatch is the synthetic result returned when the service cannot be used.
func FailedBatch(size int) ports.BatchResult {
	return ports.BatchResult{
		Status: ports.PredictionStatusFailed,
		BatchInfo: ports.BatchInfo{
			TotalAnomalies:        size,
			SuccessfulPredictions: 0,
			FailedPredictions:     size,
		},
		Results: []ports.PredictionResult{},
	}
}

func (c *Client) post(ctx context.Context, batch []ports.PredictionRequest) (ports.BatchResult, error) {
	if c.endpoint == "" {
		return ports.BatchResult{}, errors.New("prediction endpoint is not configured")
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return ports.BatchResult{}, errs.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.BatchResult{}, errs.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.BatchResult{}, errs.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ports.BatchResult{}, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var result ports.BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ports.BatchResult{}, errs.Wrap(err, "decode response")
	}
	if strings.TrimSpace(result.Status) == "" {
		return ports.BatchResult{}, errors.New("decode response: missing status")
	}
	return result, nil
}
