// Package collyfetcher implements monitor.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"webmonitor/internal/monitor"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs single HTTP GETs through a Colly collector. Error status
// codes are parsed as responses, not failures; only transport-level problems
// (DNS, refused connection, timeout) surface as errors.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	// Async is left at its default (false): colly v2.1.0's Async option
	// ignores its boolean argument and always enables async mode.
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
	)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes one HTTP GET bounded by the configured timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) (monitor.FetchResponse, error) {
	var (
		result   monitor.FetchResponse
		received bool
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	collector.OnResponse(func(r *colly.Response) {
		result = monitor.FetchResponse{
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Elapsed:    time.Since(start),
		}
		received = true
	})

	collector.OnError(func(r *colly.Response, err error) {
		// Colly reports some error statuses through OnError even with
		// ParseHTTPErrorResponse set; a populated status code means a
		// response was received.
		if r != nil && r.StatusCode != 0 {
			result = monitor.FetchResponse{
				StatusCode: r.StatusCode,
				Body:       append([]byte(nil), r.Body...),
				Elapsed:    time.Since(start),
			}
			received = true
			return
		}
		fetchErr = err
	})

	completed, visitErr := f.runCollector(ctx, collector, url)
	if !completed {
		// The caller moved on; the in-flight request still runs to its
		// own timeout, but its result is never read.
		return monitor.FetchResponse{}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	}
	if received {
		return result, nil
	}
	if fetchErr != nil {
		return monitor.FetchResponse{}, fmt.Errorf("fetch %s: %w", url, fetchErr)
	}
	if visitErr != nil {
		return monitor.FetchResponse{}, fmt.Errorf("visit %s: %w", url, visitErr)
	}
	return monitor.FetchResponse{}, fmt.Errorf("fetch %s: no response received", url)
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string) (bool, error) {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return false, nil
	case err := <-done:
		return true, err
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
