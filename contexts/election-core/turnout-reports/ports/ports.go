package ports

import (
	"context"

	"ballotcore/contexts/election-core/turnout-reports/domain/entities"
)

// ElectionFacts is the slice of election state a summary needs.
type ElectionFacts struct {
	ElectionID       string
	OrganizationID   string
	Title            string
	Status           string
	TotalVoters      int
	ResultsPublished bool
}

// RegistryFacts aggregates registry counters for one organization.
type RegistryFacts struct {
	TotalVoters  int
	VotedCount   int
	LockedVoters int
}

// ReportSource feeds both summaries. Adapters read the live tables; reports
// never mutate anything.
type ReportSource interface {
	GetElectionFacts(ctx context.Context, electionID string) (ElectionFacts, bool, error)
	ListCandidateTallies(ctx context.Context, electionID string) ([]entities.CandidateTally, error)
	CountVotesByElection(ctx context.Context, electionID string) (int, error)
	GetRegistryFacts(ctx context.Context, organizationID string) (RegistryFacts, error)
}
