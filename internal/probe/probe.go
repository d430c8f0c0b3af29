package probe

import "context"

// CheckResult is the unified result of a single probe.
//
// Fields:
// - StatusCode: HTTP status code when a response arrived; 0 for transport errors.
// - Success: true only for the response the monitor treats as healthy.
type CheckResult struct {
	Success    bool
	StatusCode int
	LatencyMS  float64
	Message    string
}

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
