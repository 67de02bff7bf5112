// Package logfile governs the log file lifecycle: truncate-on-start when
// logs are not retained, and per-iteration size enforcement. It owns no
// business state; every action is gated by configuration flags.
package logfile

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Manager inspects and truncates the log file according to policy.
type Manager struct {
	path         string
	checkSize    bool
	maxSizeBytes int64
	logger       *zap.Logger
}

// New builds a Manager for the given log path. maxSizeBytes is only
// consulted when checkSize is set.
func New(path string, checkSize bool, maxSizeBytes int64, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		path:         path,
		checkSize:    checkSize,
		maxSizeBytes: maxSizeBytes,
		logger:       logger,
	}
}

// WithLogger returns a copy of the manager bound to logger. The manager is
// constructed before the zap logger can exist, since it prepares the file
// the logger writes to; this rebinds it once the logger is up.
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	if logger == nil {
		return m
	}
	return &Manager{
		path:         m.path,
		checkSize:    m.checkSize,
		maxSizeBytes: m.maxSizeBytes,
		logger:       logger,
	}
}

// PrepareForRun resets the log file at process start when retainLogs is
// false, so each run begins with an empty log. The logging package opens the
// file with O_TRUNC in that mode; this call covers the case where the file
// exists before the logger does.
func (m *Manager) PrepareForRun(retainLogs bool) error {
	if retainLogs {
		return nil
	}
	if err := os.Truncate(m.path, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("truncate log file %q: %w", m.path, err)
	}
	return nil
}

// MaybeRotate truncates the log file to empty when it exceeds the configured
// threshold. This is a hard cutoff: old content is discarded, not archived.
// Called at iteration boundaries, where no checks are writing.
func (m *Manager) MaybeRotate() error {
	if !m.checkSize {
		return nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log file %q: %w", m.path, err)
	}
	if info.Size() <= m.maxSizeBytes {
		return nil
	}
	if err := os.Truncate(m.path, 0); err != nil {
		return fmt.Errorf("truncate log file %q: %w", m.path, err)
	}
	m.logger.Info("log file truncated",
		zap.String("path", m.path),
		zap.Int64("size_bytes", info.Size()),
		zap.Int64("max_bytes", m.maxSizeBytes),
	)
	return nil
}
