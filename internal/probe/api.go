package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// maxErrorDetail caps stored error messages so a pathological transport
// error cannot grow the database.
const maxErrorDetail = 100

// APIResult classifies the outcome of a single endpoint probe. A status
// code of 0 means the request never produced an HTTP response (timeout
// or transport failure); ErrorMessage is then always set.
type APIResult struct {
	ResponseTimeMs float64
	StatusCode     int
	Success        bool
	ErrorMessage   string
}

// APIProbe issues single GET requests with a fixed timeout.
type APIProbe struct {
	timeout time.Duration
	client  *http.Client
}

// NewAPIProbe returns a probe whose requests are bounded by timeout.
func NewAPIProbe(timeout time.Duration) *APIProbe {
	return &APIProbe{
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Run issues one GET against rawURL and classifies the outcome. It never
// returns an error: every failure mode is folded into the result so the
// caller always receives a well-formed sample.
func (p *APIProbe) Run(ctx context.Context, rawURL string) APIResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return APIResult{
			ResponseTimeMs: elapsedMs(start),
			ErrorMessage:   "Unexpected error: " + truncate(err.Error()),
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return p.classifyTransportError(err, start)
	}
	defer resp.Body.Close()

	elapsed := elapsedMs(start)
	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	result := APIResult{
		ResponseTimeMs: elapsed,
		StatusCode:     resp.StatusCode,
		Success:        success,
	}
	if !success {
		result.ErrorMessage = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return result
}

// classifyTransportError maps request failures onto the stored error
// taxonomy: timeouts, connection-level failures, and everything else.
func (p *APIProbe) classifyTransportError(err error, start time.Time) APIResult {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		// Report the full timeout budget rather than the observed
		// elapsed time, which can come in fractionally under it.
		return APIResult{
			ResponseTimeMs: p.timeout.Seconds() * 1000,
			ErrorMessage:   "Request timeout",
		}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return APIResult{
			ResponseTimeMs: elapsedMs(start),
			ErrorMessage:   "Connection error: " + truncate(err.Error()),
		}
	}

	return APIResult{
		ResponseTimeMs: elapsedMs(start),
		ErrorMessage:   "Unexpected error: " + truncate(err.Error()),
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func truncate(s string) string {
	if len(s) > maxErrorDetail {
		return s[:maxErrorDetail]
	}
	return s
}
