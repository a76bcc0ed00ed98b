package satispay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/satispay-community/satispay-go/pkg/metrics"
)

// errorPayload is the provider error body: {code, message, wlt}.
type errorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Wlt     string `json:"wlt"`
}

// request is the single place that knows about HTTP, the JSON wire format and
// environment URLs. Resource methods build a path and an optional body and
// deserialize into their own response type.
func request[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	if c.closed.Load() {
		return zero, ErrClientClosed
	}

	var reqBody io.Reader
	if body != nil {
		j, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(j)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.securityBearer)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, "error").Inc()
		// Transport failures and caller cancellation pass through as-is so
		// errors.Is(err, context.Canceled) keeps working.
		return zero, fmt.Errorf("satispay: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}

	status := strconv.Itoa(resp.StatusCode)
	metrics.RequestsTotal.WithLabelValues(method, status).Inc()
	metrics.RequestDuration.WithLabelValues(method, status).Observe(time.Since(start).Seconds())
	c.logger.DebugContext(ctx, "satispay request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return handleResponse[T](resp.StatusCode, raw)
}

func handleResponse[T any](statusCode int, raw []byte) (T, error) {
	var zero T

	// 500 is opaque, the body is not a structured provider error.
	if statusCode == http.StatusInternalServerError {
		return zero, &Error{Kind: ErrorKindInternal, StatusCode: statusCode}
	}

	if statusCode >= 200 && statusCode < 300 {
		var value T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &value); err != nil {
				return zero, fmt.Errorf("unmarshal response: %w", err)
			}
		}
		return value, nil
	}

	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return zero, fmt.Errorf("unmarshal error response (status %d): %w", statusCode, err)
	}

	kind := ErrorKindProvider
	switch statusCode {
	case http.StatusUnauthorized:
		kind = ErrorKindUnauthorized
	case http.StatusBadRequest:
		kind = ErrorKindValidation
	}

	return zero, &Error{
		Kind:       kind,
		StatusCode: statusCode,
		Code:       payload.Code,
		Message:    payload.Message,
		Wlt:        payload.Wlt,
	}
}

// CheckAuthorization verifies that the security bearer is accepted by the
// service. It performs a single authenticated request and returns the mapped
// provider error on rejection.
func (c *Client) CheckAuthorization(ctx context.Context) error {
	_, err := request[json.RawMessage](ctx, c, http.MethodGet, "/wally-services/protocol/authenticated", nil)
	return err
}
