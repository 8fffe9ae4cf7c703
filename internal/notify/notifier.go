// Package notify alerts the operator over Telegram and Discord when a run
// goes wrong. Delivery is best effort: failures are logged and never change
// the outcome of the run that triggered them.
package notify

import (
	"context"
	"log/slog"
)

// Event types the bot emits.
const (
	EventRunFailed     = "run_failed"
	EventPublishFailed = "publish_failed"
)

// Sender is one notification channel.
type Sender interface {
	// Send delivers a titled message.
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel in logs ("telegram", "discord").
	Name() string
}

// Notifier fans a notification out to every configured sender. An optional
// event filter limits which event types are forwarded; an empty filter allows
// everything.
type Notifier struct {
	senders []Sender
	allowed map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier for the given senders and allowed events.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[e] = true
	}
	return &Notifier{
		senders: senders,
		allowed: allowed,
		logger:  logger.With(slog.String("component", "notify")),
	}
}

// Notify delivers the message to every sender, best effort. Individual sender
// failures are logged and do not stop delivery to the others.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) {
	if len(n.allowed) > 0 && !n.allowed[event] {
		n.logger.Debug("event filtered out", slog.String("event", event))
		return
	}

	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Error("sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
			continue
		}
		n.logger.Debug("notification sent",
			slog.String("sender", s.Name()),
			slog.String("event", event),
		)
	}
}
