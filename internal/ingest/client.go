package ingest

import (
	"net"
	"net/http"
	"time"
)

const (
	maxRetries  = 4
	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 8 * time.Second
)

// retryStatus lists the transient upstream statuses worth another attempt.
// Anything else 4xx is a hard failure and surfaces immediately.
var retryStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// retryTransport retries idempotent requests a bounded number of times with
// capped exponential backoff. Connection-level errors count as retryable.
type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return t.base.RoundTrip(req)
	}

	var resp *http.Response
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = t.base.RoundTrip(req)
		if err == nil && !retryStatus[resp.StatusCode] {
			return resp, nil
		}
		if attempt >= t.retries {
			return resp, err
		}
		if resp != nil {
			// free the connection before retrying
			resp.Body.Close()
		}

		d := t.backoff << uint(attempt)
		if d > maxBackoff {
			d = maxBackoff
		}
		select {
		case <-time.After(d):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
}

// NewRetryClient builds the client used for all upstream page requests. It is
// safe to share across many sequential requests.
func NewRetryClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			retries: maxRetries,
			backoff: baseBackoff,
			base: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}
