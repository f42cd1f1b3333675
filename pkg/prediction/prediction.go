package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/rs/zerolog/log"
)

const (
	DefaultEndpoint = "http://127.0.0.1:5000/api/predict"
	DefaultTimeout  = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// Predictor turns an itinerary into a human readable fare prediction
type Predictor interface {
	Predict(ctx context.Context, input itinerary.Input) (string, error)
}

// TransportError covers every way a prediction request can fail after it has been
// handed to the network: connection problems, non-2xx statuses and bodies that
// do not carry a prediction.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("prediction request to %s failed with status %d: %s", e.Endpoint, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("prediction request to %s failed: %s", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Response struct {
	PredictionText *string `json:"prediction_text"`
}

// Client talks to the prediction service over HTTP
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Predict(ctx context.Context, input itinerary.Input) (string, error) {
	requestBody, err := json.Marshal(input)
	if err != nil {
		return "", &TransportError{Endpoint: c.Endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", &TransportError{Endpoint: c.Endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &TransportError{Endpoint: c.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("endpoint", c.Endpoint).
		Int("status", resp.StatusCode).
		Str("latency", time.Since(startTime).String()).
		Msg("Prediction service responded")

	byteValue, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Endpoint: c.Endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &TransportError{
			Endpoint:   c.Endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %q", resp.Status),
		}
	}

	var response Response
	if err := json.Unmarshal(byteValue, &response); err != nil {
		return "", &TransportError{Endpoint: c.Endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if response.PredictionText == nil {
		return "", &TransportError{
			Endpoint:   c.Endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New("response has no prediction_text"),
		}
	}

	return *response.PredictionText, nil
}
