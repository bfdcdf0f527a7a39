// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package dressipi

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// retryDoer retries GET requests on network errors and on 429/5xx
// responses with exponential backoff. The last response is returned as-is
// so the caller can report its status.
type retryDoer struct {
	inner      HTTPDoer
	maxRetries int
	baseDelay  time.Duration
}

func newRetryDoer(inner HTTPDoer, maxRetries int, baseDelay time.Duration) *retryDoer {
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &retryDoer{inner: inner, maxRetries: maxRetries, baseDelay: baseDelay}
}

func (r *retryDoer) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			delay := r.baseDelay << (attempt - 1)
			slog.Warn("dressipi retry", "attempt", attempt, "max", r.maxRetries, "host", req.URL.Host, "wait", delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, req.Context().Err()
			}
		}

		resp, err := r.inner.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			continue
		}
		if !retryableStatus(resp.StatusCode) || attempt == r.maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("dressipi: retryable status %d", resp.StatusCode)
	}
	return nil, lastErr
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
