package notifier

import (
	"context"
	"log/slog"

	"ballotcore/contexts/election-core/vote-ledger/domain/entities"
	"ballotcore/contexts/election-core/vote-ledger/ports"
)

// LogNotifier is the default post-commit confirmation adapter: it records the
// cast in the structured log. A receipt channel (email, webhook) replaces it
// in deployment wiring without touching the use case.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) VoteRecorded(_ context.Context, vote entities.Vote) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("vote confirmation dispatched",
		"event", "vote_confirmation_dispatched",
		"module", "election-core/vote-ledger",
		"layer", "adapter",
		"vote_id", vote.ID,
		"election_id", vote.ElectionID,
	)
	return nil
}

var _ ports.ConfirmationNotifier = LogNotifier{}
