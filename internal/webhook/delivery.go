package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxResponseBodySize bounds how much of the receiver's reply is logged.
const maxResponseBodySize = 4096

// attemptResult is the outcome of a single POST.
type attemptResult struct {
	Status    *int
	Body      string
	Err       error
	LatencyMs int
}

func (r attemptResult) ok() bool {
	return r.Err == nil && r.Status != nil && *r.Status >= 200 && *r.Status < 300
}

// errorMessage is what goes into the call log's error_message column.
func (r attemptResult) errorMessage() *string {
	var msg string
	switch {
	case r.Err != nil:
		msg = r.Err.Error()
	case r.Status != nil && !r.ok():
		msg = fmt.Sprintf("HTTP %d", *r.Status)
	default:
		return nil
	}
	return &msg
}

// post performs one delivery attempt bounded by timeout.
func post(ctx context.Context, client *http.Client, ep Endpoint, body []byte, timeout time.Duration, logger *zap.Logger) attemptResult {
	result := attemptResult{}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		result.Err = fmt.Errorf("failed to create HTTP request: %w", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	result.LatencyMs = int(time.Since(start).Milliseconds())
	if err != nil {
		result.Err = fmt.Errorf("HTTP request failed: %w", err)
		return result
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	result.Status = &status

	buf, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if readErr != nil {
		logger.Warn("failed to read webhook response body",
			zap.Error(readErr),
			zap.String("url", ep.URL),
		)
	}
	result.Body = string(buf)
	result.LatencyMs = int(time.Since(start).Milliseconds())

	return result
}
