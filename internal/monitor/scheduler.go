package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webmonitor/internal/metrics"
)

// RunsUnbounded is the num_runs sentinel for "iterate until stopped".
const RunsUnbounded = -1

// Rotator enforces the log-file size policy at iteration boundaries.
type Rotator interface {
	MaybeRotate() error
}

// Snapshot is the scheduler state exposed to the status API. Counts only;
// per-check results are never retained.
type Snapshot struct {
	Running       bool      `json:"running"`
	Iterations    int       `json:"iterations"`
	LastRunAt     time.Time `json:"last_run_at"`
	LastTotal     int       `json:"last_total"`
	LastSucceeded int       `json:"last_succeeded"`
	LastFailed    int       `json:"last_failed"`
}

// Scheduler drives the repeated-execution policy: fixed run count or
// unbounded, inter-iteration delay, and cooperative shutdown. Iterations are
// serialized; iteration N+1 never starts before N's checks complete.
type Scheduler struct {
	runner  *Runner
	rotator Rotator
	numRuns int
	delay   time.Duration
	clock   Clock
	logger  *zap.Logger

	mu       sync.Mutex
	snapshot Snapshot
}

// SchedulerConfig wires the Scheduler.
type SchedulerConfig struct {
	Runner  *Runner
	Rotator Rotator
	NumRuns int
	Delay   time.Duration
	Clock   Clock
	Logger  *zap.Logger
}

// NewScheduler builds a Scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		runner:  cfg.Runner,
		rotator: cfg.Rotator,
		numRuns: cfg.NumRuns,
		delay:   cfg.Delay,
		clock:   clock,
		logger:  logger,
	}
}

// Snapshot returns the current scheduler state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Run blocks until the configured number of iterations has completed or the
// context is canceled. Cancellation is cooperative: it is observed between
// iterations and during the delay; checks already in flight run to their
// per-check timeout.
func (s *Scheduler) Run(ctx context.Context) error {
	// Non-positive run counts other than the unbounded sentinel mean
	// "run zero iterations".
	if s.numRuns != RunsUnbounded && s.numRuns <= 0 {
		s.logger.Info("no iterations requested", zap.Int("num_runs", s.numRuns))
		return nil
	}

	s.setRunning(true)
	defer s.setRunning(false)

	iteration := 0
	for {
		if ctx.Err() != nil {
			s.logger.Info("shutdown requested, stopping", zap.Int("iterations_completed", iteration))
			return nil
		}

		runID := uuid.NewString()
		// Dispatched checks run detached from the shutdown signal; the
		// per-check timeout is their only bound. Cancellation takes effect
		// at the loop boundary and during the delay.
		summary := s.runner.RunIteration(context.WithoutCancel(ctx))
		iteration++
		metrics.ObserveIteration()
		s.recordIteration(iteration, summary)

		s.logger.Info("iteration completed",
			zap.String("run_id", runID),
			zap.Int("iteration", iteration),
			zap.Int("total", summary.Total),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", len(summary.Failed)),
		)

		if s.numRuns != RunsUnbounded && iteration >= s.numRuns {
			s.logger.Info("run count reached, stopping", zap.Int("num_runs", s.numRuns))
			return nil
		}

		if s.rotator != nil {
			if err := s.rotator.MaybeRotate(); err != nil {
				s.logger.Warn("log rotation check failed", zap.Error(err))
			}
		}

		if !s.sleep(ctx) {
			s.logger.Info("shutdown requested during delay, stopping",
				zap.Int("iterations_completed", iteration))
			return nil
		}
	}
}

// sleep waits out the inter-iteration delay. It returns false when the
// context was canceled before the delay elapsed.
func (s *Scheduler) sleep(ctx context.Context) bool {
	if s.delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Scheduler) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Running = running
}

func (s *Scheduler) recordIteration(iteration int, summary Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Iterations = iteration
	s.snapshot.LastRunAt = s.clock.Now()
	s.snapshot.LastTotal = summary.Total
	s.snapshot.LastSucceeded = summary.Succeeded
	s.snapshot.LastFailed = len(summary.Failed)
}
