// Package dataaccess talks to the booking backend's REST API. Every
// exported call returns a models.Envelope: transport failures, non-2xx
// responses and business failures all arrive as Success=false with a
// message, never as a Go error.
package dataaccess

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

	"github.com/dharmasatrya/blockseats/internal/clock"
	"github.com/dharmasatrya/blockseats/internal/models"
	"github.com/dharmasatrya/blockseats/internal/ratelimit"
	"github.com/dharmasatrya/blockseats/internal/requestid"
)

const RequestIDHeader = "X-Request-ID"

type Config struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelays []time.Duration
	Limiter     *ratelimit.EndpointLimiter
	HTTPClient  *http.Client
	Clock       clock.Clock
	Logger      *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Timeout:     10 * time.Second,
		MaxRetries:  2,
		RetryDelays: []time.Duration{100 * time.Millisecond, 300 * time.Millisecond},
	}
}

type Client struct {
	baseURL     string
	token       string
	timeout     time.Duration
	maxRetries  int
	retryDelays []time.Duration
	limiter     *ratelimit.EndpointLimiter
	httpClient  *http.Client
	clock       clock.Clock
	logger      *slog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		retryDelays: cfg.RetryDelays,
		limiter:     cfg.Limiter,
		httpClient:  cfg.HTTPClient,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
	}
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode       int
	Message          string
	ValidationErrors map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// call performs one logical request and decodes the backend's envelope.
func call[T any](ctx context.Context, c *Client, method, endpoint, path string, body any) models.Envelope[T] {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx = requestid.Ensure(ctx)
	log := c.logger.With("endpoint", endpoint, "request_id", requestid.From(ctx))

	var raw json.RawMessage
	err := c.doWithRetry(ctx, method, endpoint, path, body, &raw)
	if err == nil {
		var zero T
		if len(raw) == 0 {
			return models.OK(zero)
		}
		var env models.Envelope[T]
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Error("undecodable backend response", "error", err)
			return models.Fail[T]("unexpected response from the booking service")
		}
		return env
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		log.Warn("backend rejected request", "status", apiErr.StatusCode, "message", apiErr.Message)
		out := models.Fail[T](apiErr.Message)
		out.ValidationErrors = apiErr.ValidationErrors
		return out
	case errors.Is(err, context.Canceled):
		log.Debug("request cancelled")
		return models.Fail[T]("request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", "error", err)
		return models.Fail[T]("the booking service took too long to respond")
	}
	log.Error("request failed", "error", err)
	return models.Fail[T]("unable to reach the booking service")
}

func (c *Client) doWithRetry(ctx context.Context, method, endpoint, path string, body, result any) error {
	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-c.clock.After(c.retryDelay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, endpoint); err != nil {
				return err
			}
		}

		err := c.doJSON(ctx, method, path, body, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if ctx.Err() != nil || (errors.As(err, &apiErr) && !apiErr.retryable()) {
			return err
		}
		c.logger.Debug("backend attempt failed", "endpoint", endpoint, "attempt", attempt+1, "error", err)
	}
	return lastErr
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if len(c.retryDelays) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(c.retryDelays) {
		idx = len(c.retryDelays) - 1
	}
	return c.retryDelays[idx]
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set(RequestIDHeader, requestid.From(requestid.Ensure(ctx)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message          string            `json:"message"`
			Error            string            `json:"error"`
			ValidationErrors map[string]string `json:"validationErrors"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.ValidationErrors = errResp.ValidationErrors
			switch {
			case errResp.Message != "":
				apiErr.Message = errResp.Message
			case errResp.Error != "":
				apiErr.Message = errResp.Error
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || len(respBody) == 0 || result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
