package workers

import (
	"context"
	"log/slog"
	"time"

	application "ballotcore/contexts/election-core/election-lifecycle/application"
	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	"ballotcore/contexts/election-core/election-lifecycle/ports"
)

// StatusSweeper advances election statuses against wall-clock time: DRAFT
// elections whose window has opened become ACTIVE, and DRAFT/ACTIVE elections
// whose window has closed become COMPLETED with a fresh turnout figure.
//
// Every transition is a conditional update guarded by the current status, so
// the sweep is idempotent and never races destructively with a manual
// transition taken between the list and the update.
type StatusSweeper struct {
	Elections ports.ElectionRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (s StatusSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	due, err := s.Elections.ListDueForCompletion(ctx, now)
	if err != nil {
		logger.Error("sweep completion list failed",
			"event", "lifecycle_sweep_completion_list_failed",
			"module", "election-core/election-lifecycle",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	for _, election := range due {
		// The ballot window is already closed for every listed election, so
		// the count is final before the transition commits.
		turnout := 0
		if election.TotalVoters > 0 {
			votes, err := s.Elections.CountVotesByElection(ctx, election.ID)
			if err != nil {
				return err
			}
			turnout = int(float64(votes)/float64(election.TotalVoters)*100 + 0.5)
		}
		moved, err := s.Elections.CompleteWithTurnout(ctx, election.ID,
			[]entities.ElectionStatus{entities.ElectionStatusDraft, entities.ElectionStatusActive},
			turnout, now)
		if err != nil {
			return err
		}
		if !moved {
			continue
		}
		logger.Info("election completed by sweep",
			"event", "lifecycle_sweep_election_completed",
			"module", "election-core/election-lifecycle",
			"layer", "worker",
			"election_id", election.ID,
		)
	}

	opened, err := s.Elections.ListDueForActivation(ctx, now)
	if err != nil {
		logger.Error("sweep activation list failed",
			"event", "lifecycle_sweep_activation_list_failed",
			"module", "election-core/election-lifecycle",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	for _, election := range opened {
		moved, err := s.Elections.TransitionStatus(ctx, election.ID,
			[]entities.ElectionStatus{entities.ElectionStatusDraft},
			entities.ElectionStatusActive, now)
		if err != nil {
			return err
		}
		if moved {
			logger.Info("election activated by sweep",
				"event", "lifecycle_sweep_election_activated",
				"module", "election-core/election-lifecycle",
				"layer", "worker",
				"election_id", election.ID,
			)
		}
	}
	return nil
}
