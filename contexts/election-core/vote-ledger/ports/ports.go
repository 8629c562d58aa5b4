package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-core/vote-ledger/domain/entities"
)

// ElectionProjection is the slice of election state castVote consults.
type ElectionProjection struct {
	ElectionID     string
	OrganizationID string
	Status         string
	StartTime      time.Time
	EndTime        time.Time
	TotalVoters    int
	AllowWriteIn   bool
}

// Open reports whether the election accepts votes at the given instant.
func (p ElectionProjection) Open(now time.Time) bool {
	if p.Status != "ACTIVE" {
		return false
	}
	now = now.UTC()
	return !now.Before(p.StartTime.UTC()) && now.Before(p.EndTime.UTC())
}

type CandidateProjection struct {
	CandidateID string
	ElectionID  string
	Active      bool
	WriteIn     bool
}

// VoterProjection is the registry state the duplicate-vote and lockout guards
// read. Used here is defense-in-depth: the unique index on the votes table is
// the final arbiter. Locked is evaluated against the registry's own threshold
// by the directory, so the ledger never hardcodes it.
type VoterProjection struct {
	VoterRegistryID string
	OrganizationID  string
	Used            bool
	Locked          bool
}

// ElectionDirectory resolves election and candidate projections.
type ElectionDirectory interface {
	GetElection(ctx context.Context, electionID string) (ElectionProjection, bool, error)
	GetCandidate(ctx context.Context, candidateID string) (CandidateProjection, bool, error)
}

// VoterDirectory resolves the registry projection for a verified voter handle.
type VoterDirectory interface {
	GetVoter(ctx context.Context, voterRegistryID string) (VoterProjection, bool, error)
}

// PolicyDirectory answers whether an organization has a resolvable active
// identity policy. castVote fails closed when it does not.
type PolicyDirectory interface {
	HasActivePolicy(ctx context.Context, organizationID string) (bool, error)
}

// VoteRepository persists the ledger. ApplyCastVote commits the vote row, the
// registry used flag, the candidate tally and the election turnout as one
// atomic unit; a duplicate (election, voter) insert must surface as the
// already-voted conflict.
type VoteRepository interface {
	ApplyCastVote(ctx context.Context, vote entities.Vote) error
	GetVote(ctx context.Context, voteID string) (entities.Vote, error)
	ListVotesByElection(ctx context.Context, electionID string) ([]entities.Vote, error)
	ListVotesByVoter(ctx context.Context, voterRegistryID string) ([]entities.Vote, error)
	HasVoted(ctx context.Context, electionID, voterRegistryID string) (bool, error)
	CountVotesByElection(ctx context.Context, electionID string) (int, error)
	CountVotesByCandidate(ctx context.Context, candidateID string) (int, error)
}

// ConfirmationNotifier is invoked after a successful commit. Failures are
// logged and never undo the vote.
type ConfirmationNotifier interface {
	VoteRecorded(ctx context.Context, vote entities.Vote) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
