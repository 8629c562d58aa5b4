package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
)

type ElectionRepository interface {
	SaveElection(ctx context.Context, election entities.Election) error
	// UpdateElection applies a compare-and-swap on the entity version and
	// reports a conflict when a concurrent transition won the race.
	UpdateElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListElectionsByOrganization(ctx context.Context, organizationID string, status entities.ElectionStatus) ([]entities.Election, error)

	// TransitionStatus performs a conditional status update guarded by the
	// current status set; it reports whether the row actually moved. The
	// sweep relies on this to stay idempotent under concurrent manual
	// transitions.
	TransitionStatus(ctx context.Context, electionID string, from []entities.ElectionStatus, to entities.ElectionStatus, updatedAt time.Time) (bool, error)

	ListDueForActivation(ctx context.Context, now time.Time) ([]entities.Election, error)
	ListDueForCompletion(ctx context.Context, now time.Time) ([]entities.Election, error)

	CountVotesByElection(ctx context.Context, electionID string) (int, error)
	// CompleteWithTurnout moves the row to COMPLETED and writes the final
	// turnout figure in the same conditional update, so a crash can never
	// leave a completed election with a stale turnout.
	CompleteWithTurnout(ctx context.Context, electionID string, from []entities.ElectionStatus, turnout int, updatedAt time.Time) (bool, error)
}

type CandidateRepository interface {
	SaveCandidate(ctx context.Context, candidate entities.Candidate) error
	UpdateCandidate(ctx context.Context, candidate entities.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListCandidatesByElection(ctx context.Context, electionID string, activeOnly bool) ([]entities.Candidate, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
