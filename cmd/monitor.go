package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webmonitor/internal/alert"
	"webmonitor/internal/api"
	"webmonitor/internal/config"
	collyfetcher "webmonitor/internal/fetcher/colly"
	"webmonitor/internal/logfile"
	"webmonitor/internal/logging"
	"webmonitor/internal/metrics"
	"webmonitor/internal/monitor"
	"webmonitor/internal/policy/ratelimit"
)

func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Runs the monitoring loop",
		Long: `Runs the scheduled monitoring lifecycle: each iteration checks every
configured site with bounded concurrency, alerts on failures, and sleeps
for the configured delay until the run count is reached or the process
receives an interrupt.`,
		RunE: runMonitorCommand,
	}
}

func runMonitorCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logManager := logfile.New(cfg.Logging.File, cfg.CheckFileSize, cfg.MaxFileSizeBytes(), nil)
	if err := logManager.PrepareForRun(cfg.RetainLogs); err != nil {
		return fmt.Errorf("prepare log file: %w", err)
	}

	logger, err := logging.New(logging.Options{
		File:         cfg.Logging.File,
		Append:       cfg.RetainLogs,
		Development:  cfg.Logging.Development,
		ConsoleLevel: cfg.Logging.ConsoleLevel,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logManager = logManager.WithLogger(logger.Named("logfile"))

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := buildScheduler(cfg, logManager, logger)

	if cfg.Status.Enabled {
		server := api.NewServer(cfg.Status.Addr, sched, logger.Named("api"))
		go func() {
			if serveErr := server.Start(ctx); serveErr != nil {
				logger.Error("status server failed", zap.Error(serveErr))
			}
		}()
	}

	logger.Info("monitoring started",
		zap.Int("targets", len(cfg.Monitor)),
		zap.Int("num_runs", cfg.NumRuns),
		zap.Int("concurrent_requests", cfg.ConcurrentRequests),
	)
	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("run monitor: %w", err)
	}
	logger.Info("monitoring stopped")
	return nil
}

func buildScheduler(cfg config.Config, logManager *logfile.Manager, logger *zap.Logger) *monitor.Scheduler {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout(),
	})

	var sender alert.Sender
	if cfg.WebhookURL != "" {
		sender = alert.NewWebhookSender(cfg.WebhookURL, cfg.Timeout())
	}
	dispatcher := alert.NewDispatcher(sender, cfg.SendAlerts, logger.Named("alert"))

	runner := monitor.NewRunner(monitor.RunnerConfig{
		Targets:     cfg.Targets(),
		Checker:     monitor.NewChecker(fetcher, cfg.GlobalAccessibilityTexts, logger.Named("checker")),
		Alerter:     dispatcher,
		Pacer:       ratelimit.New(ratelimit.Config{PerHostRPS: cfg.Politeness.PerHostRPS, Burst: cfg.Politeness.Burst}),
		Concurrency: cfg.ConcurrentRequests,
		SendAlerts:  cfg.SendAlerts,
		Logger:      logger.Named("runner"),
	})

	return monitor.NewScheduler(monitor.SchedulerConfig{
		Runner:  runner,
		Rotator: logManager,
		NumRuns: cfg.NumRuns,
		Delay:   cfg.IterationDelay(),
		Logger:  logger.Named("scheduler"),
	})
}
