package workers

import (
	"context"
	"log/slog"
	"time"

	application "ballotcore/contexts/election-core/identity-challenge/application"
	"ballotcore/contexts/election-core/identity-challenge/ports"
)

// DefaultRetention keeps expired challenges around for a day so support can
// inspect recent verification failures before rows disappear.
const DefaultRetention = 24 * time.Hour

// ChallengeCleaner garbage-collects expired challenges. The delete predicate
// is expiry-only, so it is safe alongside live generate/verify traffic.
type ChallengeCleaner struct {
	Challenges ports.ChallengeRepository
	Clock      ports.Clock
	Retention  time.Duration
	Logger     *slog.Logger
}

func (c ChallengeCleaner) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	retention := c.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	deleted, err := c.Challenges.DeleteExpiredBefore(ctx, now.Add(-retention))
	if err != nil {
		logger.Error("challenge cleanup failed",
			"event", "identity_challenge_cleanup_failed",
			"module", "election-core/identity-challenge",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if deleted > 0 {
		logger.Info("expired challenges deleted",
			"event", "identity_challenge_cleanup_completed",
			"module", "election-core/identity-challenge",
			"layer", "worker",
			"deleted", deleted,
		)
	}
	return nil
}
