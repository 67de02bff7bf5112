package monitor

import (
	"context"
	"time"

	"webmonitor/internal/alert"
)

// FetchResponse is what a Fetcher returns when a response was received.
type FetchResponse struct {
	StatusCode int
	Body       []byte
	Elapsed    time.Duration
}

// Fetcher performs a single HTTP GET bounded by the configured timeout.
// Implementations return an error when no response was received at all
// (connection failure, DNS, timeout); an error status code is a response,
// not an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Alerter delivers a notification for one failing check. Delivery failure is
// the implementation's concern; the runner only logs the returned outcome.
type Alerter interface {
	Dispatch(ctx context.Context, msg alert.Message) bool
}

// Pacer throttles outbound checks, typically per host. The zero-config
// implementation never blocks.
type Pacer interface {
	Wait(ctx context.Context, url string) error
}

// Clock returns the current time; swapped for a fake in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used outside of tests.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }
