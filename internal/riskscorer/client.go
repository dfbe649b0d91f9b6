package riskscorer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PredictRequest is the feature vector sent to the scorer, keyed by feature name.
type PredictRequest struct {
	PatientID uint                   `json:"patient_id"`
	Features  map[string]interface{} `json:"features"`
}

// PredictResponse carries the binary readmission class; Probability is informational.
// Risk is nil when the scorer answered without a class.
type PredictResponse struct {
	Risk        *int    `json:"risk"`
	Probability float64 `json:"probability,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Client calls the external readmission risk scorer
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds a scorer client. retries applies to transport errors and 5xx responses.
func NewClient(baseURL string, timeout time.Duration, retries int, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// Predict posts the features and returns the scorer's verdict.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	var result PredictResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post("/predict")
	if err != nil {
		c.logger.Error("risk scorer call failed", zap.Uint("patient_id", req.PatientID), zap.Error(err))
		return nil, fmt.Errorf("failed to call risk scorer: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("risk scorer returned error",
			zap.Uint("patient_id", req.PatientID),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", result.Error),
		)
		return nil, fmt.Errorf("risk scorer error: %s (status: %d)", result.Error, resp.StatusCode())
	}

	c.logger.Debug("risk scorer responded",
		zap.Uint("patient_id", req.PatientID),
		zap.Intp("risk", result.Risk),
		zap.Duration("latency", resp.Time()),
	)
	return &result, nil
}
