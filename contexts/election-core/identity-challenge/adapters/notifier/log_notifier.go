package notifier

import (
	"context"
	"log/slog"

	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	"ballotcore/contexts/election-core/identity-challenge/ports"
)

// LogNotifier is the default delivery adapter: it records the dispatch in the
// structured log. Real channel integrations (SMTP, SMS gateway) replace it in
// deployment wiring without touching the use cases.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Deliver(_ context.Context, identifier string, channel entities.OTPChannel, _ string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// The code itself stays out of the log line.
	logger.Info("notification dispatched",
		"event", "identity_notification_dispatched",
		"module", "election-core/identity-challenge",
		"layer", "adapter",
		"identifier", identifier,
		"channel", string(channel),
	)
	return nil
}

var _ ports.Notifier = LogNotifier{}
