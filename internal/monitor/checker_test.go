package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	responses map[string]FetchResponse
	errs      map[string]error

	mu    sync.Mutex
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (FetchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return FetchResponse{}, err
	}
	if resp, ok := f.responses[url]; ok {
		return resp, nil
	}
	return FetchResponse{}, fmt.Errorf("fetch %s: connection refused", url)
}

func (f *fakeFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "request timed out" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestChecker_ReachabilityOnlyWhenNoTextsConfigured(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		responses: map[string]FetchResponse{
			"https://ok.test": {StatusCode: 200, Body: []byte("anything"), Elapsed: 5 * time.Millisecond},
		},
	}
	checker := NewChecker(fetcher, nil, nil)

	result := checker.Check(context.Background(), Target{URL: "https://ok.test"})
	require.True(t, result.Reachable)
	require.False(t, result.Failed())
	require.Empty(t, result.MissingTexts)

	down := checker.Check(context.Background(), Target{URL: "https://down.test"})
	require.False(t, down.Reachable)
	require.True(t, down.Failed())
	require.Error(t, down.Err)
	require.Zero(t, down.StatusCode)
}

func TestChecker_TextPartitionCoversExpectedSet(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		responses: map[string]FetchResponse{
			"https://site.test": {StatusCode: 200, Body: []byte("<html>Welcome home</html>")},
		},
	}
	checker := NewChecker(fetcher, []string{"Welcome"}, nil)

	target := Target{URL: "https://site.test", AccessibilityTexts: []string{"home", "Imprint"}}
	result := checker.Check(context.Background(), target)

	require.True(t, result.Reachable)
	require.ElementsMatch(t, []string{"Welcome", "home"}, result.MatchedTexts)
	require.ElementsMatch(t, []string{"Imprint"}, result.MissingTexts)
	require.True(t, result.Failed())
	require.Equal(t, ReasonTextMismatch, result.Reason())

	// matched + missing must cover the merged set exactly.
	require.Len(t, append(result.MatchedTexts, result.MissingTexts...), 3)
}

func TestChecker_TextMatchIsCaseSensitive(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		responses: map[string]FetchResponse{
			"https://site.test": {StatusCode: 200, Body: []byte("welcome")},
		},
	}
	checker := NewChecker(fetcher, []string{"Welcome"}, nil)

	result := checker.Check(context.Background(), Target{URL: "https://site.test"})
	require.True(t, result.Failed())
	require.Equal(t, []string{"Welcome"}, result.MissingTexts)
}

func TestChecker_ErrorStatusIsUnreachable(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		responses: map[string]FetchResponse{
			"https://site.test": {StatusCode: 503, Body: []byte("Welcome")},
		},
	}
	checker := NewChecker(fetcher, []string{"Welcome"}, nil)

	result := checker.Check(context.Background(), Target{URL: "https://site.test"})
	require.False(t, result.Reachable)
	require.True(t, result.Failed())
	require.Equal(t, 503, result.StatusCode)
	require.Equal(t, ReasonHTTPStatus, result.Reason())
}

func TestChecker_TimeoutReason(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		errs: map[string]error{
			"https://slow.test": fmt.Errorf("fetch: %w", timeoutErr{}),
		},
	}
	checker := NewChecker(fetcher, []string{"Welcome"}, nil)

	result := checker.Check(context.Background(), Target{URL: "https://slow.test"})
	require.True(t, result.Failed())
	require.Equal(t, ReasonTimeout, result.Reason())
	require.Equal(t, []string{"Welcome"}, result.MissingTexts)
}

func TestChecker_ContextDeadlineIsTimeout(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		errs: map[string]error{
			"https://slow.test": fmt.Errorf("fetch canceled: %w", context.DeadlineExceeded),
		},
	}
	checker := NewChecker(fetcher, nil, nil)

	result := checker.Check(context.Background(), Target{URL: "https://slow.test"})
	require.Equal(t, ReasonTimeout, result.Reason())
}

func TestMergeTexts_UnionCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	merged := mergeTexts([]string{"Welcome", "Login"}, []string{"Login", "Imprint"})
	require.Equal(t, []string{"Welcome", "Login", "Imprint"}, merged)

	require.Nil(t, mergeTexts(nil, nil))
}

type slowFailingFetcher struct{}

func (slowFailingFetcher) Fetch(context.Context, string) (FetchResponse, error) {
	time.Sleep(time.Millisecond)
	return FetchResponse{}, errors.New("dial tcp: connection refused")
}

func TestChecker_ElapsedIsRecordedOnFetchError(t *testing.T) {
	t.Parallel()

	checker := NewChecker(slowFailingFetcher{}, nil, nil)

	result := checker.Check(context.Background(), Target{URL: "https://down.test"})
	require.True(t, result.Failed())
	require.Greater(t, result.Elapsed, time.Duration(0))
}

func TestChecker_ConnectionErrorReason(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		errs: map[string]error{
			"https://refused.test": errors.New("dial tcp: connection refused"),
		},
	}
	checker := NewChecker(fetcher, nil, nil)

	result := checker.Check(context.Background(), Target{URL: "https://refused.test"})
	require.Equal(t, ReasonUnreachable, result.Reason())
}
