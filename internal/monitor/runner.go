package monitor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"webmonitor/internal/alert"
	"webmonitor/internal/metrics"
)

// Runner orchestrates one full monitoring pass: fan-out through the bounded
// pool, aggregation, and alert dispatch for each failure. It holds no state
// across iterations; every call is independent.
type Runner struct {
	targets     []Target
	checker     *Checker
	alerter     Alerter
	pacer       Pacer
	concurrency int
	sendAlerts  bool
	logger      *zap.Logger
}

// RunnerConfig wires the Runner's collaborators and limits.
type RunnerConfig struct {
	Targets     []Target
	Checker     *Checker
	Alerter     Alerter
	Pacer       Pacer
	Concurrency int
	SendAlerts  bool
	Logger      *zap.Logger
}

// NewRunner builds a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{
		targets:     cfg.Targets,
		checker:     cfg.Checker,
		alerter:     cfg.Alerter,
		pacer:       cfg.Pacer,
		concurrency: concurrency,
		sendAlerts:  cfg.SendAlerts,
		logger:      logger,
	}
}

// RunIteration checks every monitored target exactly once and returns the
// aggregated summary. Failed results keep the relative order of the
// dispatched targets.
func (r *Runner) RunIteration(ctx context.Context) Summary {
	tasks := r.buildTasks(ctx)
	results := RunBounded(tasks, r.concurrency)

	summary := Summary{Total: len(results)}
	for _, result := range results {
		if result.Failed() {
			summary.Failed = append(summary.Failed, result)
		} else {
			summary.Succeeded++
		}
		metrics.ObserveCheck(result.Target.URL, result.Failed(), result.Elapsed)
	}

	for _, failure := range summary.Failed {
		r.handleFailure(ctx, failure)
	}
	return summary
}

func (r *Runner) buildTasks(ctx context.Context) []CheckTask {
	var tasks []CheckTask
	for _, target := range r.targets {
		if target.Excluded {
			continue
		}
		target := target
		tasks = append(tasks, func() CheckResult {
			if r.pacer != nil {
				if err := r.pacer.Wait(ctx, target.URL); err != nil {
					return CheckResult{Target: target, Err: fmt.Errorf("pacing wait: %w", err)}
				}
			}
			metrics.IncInflightChecks()
			defer metrics.DecInflightChecks()
			return r.checker.Check(ctx, target)
		})
	}
	return tasks
}

func (r *Runner) handleFailure(ctx context.Context, failure CheckResult) {
	if !r.sendAlerts || r.alerter == nil {
		return
	}
	msg := alert.Message{
		TargetURL: failure.Target.URL,
		Reason:    string(failure.Reason()),
		Detail:    failureDetail(failure),
	}
	delivered := r.alerter.Dispatch(ctx, msg)
	metrics.ObserveAlert(delivered)
}

func failureDetail(result CheckResult) string {
	switch {
	case result.Err != nil:
		return result.Err.Error()
	case !result.Reachable:
		return fmt.Sprintf("server returned status %d", result.StatusCode)
	case len(result.MissingTexts) > 0:
		return fmt.Sprintf("missing expected text %q", result.MissingTexts[0])
	default:
		return ""
	}
}
