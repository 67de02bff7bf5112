// Package alert formats failure notifications and hands them to the webhook
// transport. Alerting is strictly opt-in: with send_alerts off or no webhook
// configured the dispatcher is a no-op.
package alert

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Message describes one failing check. It is transient: built per failure,
// dispatched once, discarded.
type Message struct {
	TargetURL string
	Reason    string
	Detail    string
}

// Text renders the human-readable notification body.
func (m Message) Text() string {
	if m.Detail == "" {
		return fmt.Sprintf("Website check failed for %s: %s", m.TargetURL, m.Reason)
	}
	return fmt.Sprintf("Website check failed for %s: %s (%s)", m.TargetURL, m.Reason, m.Detail)
}

// Sender delivers a rendered message to the external transport.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Dispatcher decides whether to alert and delegates delivery. A transport
// failure is logged and reported via the return value, never propagated as a
// hard failure of the iteration.
type Dispatcher struct {
	sender  Sender
	enabled bool
	logger  *zap.Logger
}

// NewDispatcher builds a Dispatcher. Passing enabled=false or a nil sender
// yields a dispatcher that succeeds without doing anything.
func NewDispatcher(sender Sender, enabled bool, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, enabled: enabled, logger: logger}
}

// Dispatch sends one alert and reports delivery success.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) bool {
	if !d.enabled || d.sender == nil {
		return true
	}
	if err := d.sender.Send(ctx, msg.Text()); err != nil {
		d.logger.Error("alert delivery failed",
			zap.String("url", msg.TargetURL),
			zap.String("reason", msg.Reason),
			zap.Error(err),
		)
		return false
	}
	d.logger.Info("alert delivered",
		zap.String("url", msg.TargetURL),
		zap.String("reason", msg.Reason),
	)
	return true
}
