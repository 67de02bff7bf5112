// Package logging provides zap logger helpers.
//
// The monitor writes its full log to a file and mirrors higher-severity
// entries to the console. Whether the file is appended to or truncated on
// startup is governed by the retain_logs setting.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control logger construction.
type Options struct {
	// File is the log destination path.
	File string
	// Append keeps existing log content; false truncates the file on open.
	Append bool
	// Development switches to the human-friendly console encoder for the
	// file core as well.
	Development bool
	// ConsoleLevel is the minimum severity mirrored to stderr
	// (debug|info|warn|error).
	ConsoleLevel string
}

// New builds a zap.Logger writing to the configured file with a console
// mirror. Zap serializes whole entries per write, so concurrent checks never
// interleave partial lines.
func New(opts Options) (*zap.Logger, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if opts.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(opts.File, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", opts.File, err)
	}

	consoleLevel, err := zapcore.ParseLevel(opts.ConsoleLevel)
	if err != nil {
		return nil, fmt.Errorf("parse console level: %w", err)
	}

	var fileEncoder zapcore.Encoder
	if opts.Development {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = "ts"
		fileEncoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "ts"
		fileEncoder = zapcore.NewJSONEncoder(encCfg)
	}

	consoleEncCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.Lock(file), zapcore.InfoLevel),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncCfg),
			zapcore.Lock(os.Stderr),
			consoleLevel,
		),
	)

	return zap.New(core), nil
}
