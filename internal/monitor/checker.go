package monitor

import (
	"bytes"
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
)

// Checker performs one HTTP check against one target and evaluates the
// accessibility-text expectations. It never retries; resilience comes from
// the next scheduled iteration.
type Checker struct {
	fetcher     Fetcher
	globalTexts []string
	logger      *zap.Logger
}

// NewChecker builds a Checker. globalTexts is the default expected-text set
// merged into every target's own list.
func NewChecker(fetcher Fetcher, globalTexts []string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{fetcher: fetcher, globalTexts: globalTexts, logger: logger}
}

// Check issues a single GET against the target. Per-check failures are
// captured in the result, never returned as errors.
func (c *Checker) Check(ctx context.Context, target Target) CheckResult {
	result := CheckResult{Target: target}
	expected := mergeTexts(c.globalTexts, target.AccessibilityTexts)

	start := time.Now()
	resp, err := c.fetcher.Fetch(ctx, target.URL)
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Err = err
		result.MissingTexts = expected
		c.logger.Warn("site check failed",
			zap.String("url", target.URL),
			zap.String("reason", string(result.Reason())),
			zap.Duration("elapsed", result.Elapsed),
			zap.Error(err),
		)
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Reachable = resp.StatusCode < 400
	result.MatchedTexts, result.MissingTexts = scanBody(resp.Body, expected)

	if result.Failed() {
		c.logger.Warn("site check failed",
			zap.String("url", target.URL),
			zap.String("reason", string(result.Reason())),
			zap.Int("status", resp.StatusCode),
			zap.Strings("missing_texts", result.MissingTexts),
			zap.Duration("elapsed", result.Elapsed),
		)
	} else {
		c.logger.Info("site check succeeded",
			zap.String("url", target.URL),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", result.Elapsed),
		)
	}
	return result
}

// mergeTexts unions the global and per-target expected texts, collapsing
// duplicates while keeping first-seen order.
func mergeTexts(global, own []string) []string {
	seen := make(map[string]struct{}, len(global)+len(own))
	var merged []string
	for _, texts := range [][]string{global, own} {
		for _, t := range texts {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged
}

// scanBody partitions expected into texts found in body (case-sensitive
// literal substrings) and texts absent from it.
func scanBody(body []byte, expected []string) (matched, missing []string) {
	for _, text := range expected {
		if bytes.Contains(body, []byte(text)) {
			matched = append(matched, text)
		} else {
			missing = append(missing, text)
		}
	}
	return matched, missing
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
