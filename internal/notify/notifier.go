// Package notify delivers rendered alerts to the configured channels.
// Delivery is best effort: a failing channel is logged and skipped, never
// blocking the batch or the remaining channels.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is one delivery channel for a rendered alert message.
type Sender interface {
	Send(ctx context.Context, message string) error
	Name() string
}

// Dispatcher fans one alert message out to every sender.
type Dispatcher struct {
	senders []Sender
	logger  *slog.Logger
}

func NewDispatcher(senders []Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		senders: senders,
		logger:  logger.With(slog.String("component", "notify")),
	}
}

// Dispatch sends the message to all senders. Individual failures are
// collected into one combined error after every sender had its chance.
func (d *Dispatcher) Dispatch(ctx context.Context, message string) error {
	if len(d.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range d.senders {
		if err := s.Send(ctx, message); err != nil {
			d.logger.Error("Sender failed", "sender", s.Name(), "err", err)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
