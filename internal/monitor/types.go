// Package monitor implements the monitoring iteration engine: bounded
// concurrent site checks, result aggregation, alert dispatch, and the
// repeated-execution scheduler.
package monitor

import (
	"time"
)

// Target is a single configured URL plus its expected-text set. Targets are
// built from configuration at startup and never mutated afterwards.
type Target struct {
	// URL is the address checked each iteration.
	URL string
	// AccessibilityTexts are substrings expected in the response body,
	// merged with the global set at check time.
	AccessibilityTexts []string
	// Excluded marks a do_not_monitor entry: listed for documentation,
	// never dispatched.
	Excluded bool
}

// FailureReason classifies why a check counts as failed.
type FailureReason string

// Failure reasons carried on alert messages and log lines.
const (
	ReasonUnreachable  FailureReason = "unreachable"
	ReasonTimeout      FailureReason = "timeout"
	ReasonHTTPStatus   FailureReason = "http-status"
	ReasonTextMismatch FailureReason = "text-mismatch"
	ReasonError        FailureReason = "error"
)

// CheckResult is the outcome of one check against one target. It is created
// fresh per check and consumed by the iteration runner; nothing is retained
// across iterations.
type CheckResult struct {
	Target       Target
	Reachable    bool
	StatusCode   int // 0 when no response was received
	MatchedTexts []string
	MissingTexts []string
	Err          error
	Elapsed      time.Duration
}

// Failed reports whether this result counts as a failure: unreachable, or
// expected text was configured and at least one string is missing.
func (r CheckResult) Failed() bool {
	if !r.Reachable {
		return true
	}
	return len(r.MissingTexts) > 0
}

// Reason derives the failure classification for alerting. It is only
// meaningful when Failed() is true.
func (r CheckResult) Reason() FailureReason {
	switch {
	case r.Reachable:
		return ReasonTextMismatch
	case r.Err != nil && isTimeout(r.Err):
		return ReasonTimeout
	case r.StatusCode >= 400:
		return ReasonHTTPStatus
	case r.Err != nil:
		return ReasonUnreachable
	default:
		return ReasonError
	}
}

// Summary aggregates one iteration. Failed preserves the input order of the
// dispatched targets so alerting and tests are deterministic.
type Summary struct {
	Total     int
	Succeeded int
	Failed    []CheckResult
}
