package tracker

import (
	"context"
	"log/slog"

	"github.com/dexwatch/swap-tracker/internal/alert"
	"github.com/dexwatch/swap-tracker/internal/notify"
)

// QueueSink publishes alerts to the message queue emitter.
type QueueSink struct {
	Emitter *notify.Emitter
}

func (s QueueSink) Publish(_ context.Context, a *alert.Alert) error {
	return s.Emitter.EmitAlert(a)
}

// ChannelSink pushes one locale's rendered message to chat channels.
type ChannelSink struct {
	Dispatcher *notify.Dispatcher
	Locale     string
}

func (s ChannelSink) Publish(ctx context.Context, a *alert.Alert) error {
	msg, ok := a.Messages[s.Locale]
	if !ok {
		for _, m := range a.Messages {
			msg = m
			break
		}
	}
	return s.Dispatcher.Dispatch(ctx, msg)
}

// LogSink writes rendered alerts to the log, the default sink when no
// delivery channel is configured.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(_ context.Context, a *alert.Alert) error {
	for locale, msg := range a.Messages {
		s.Logger.Info("ALERT", "locale", locale, "tx_id", a.View.TxID, "text", msg)
	}
	return nil
}
