package queries

import (
	"context"
	"strings"

	"ballotcore/contexts/election-core/turnout-reports/domain/entities"
	domainerrors "ballotcore/contexts/election-core/turnout-reports/domain/errors"
	"ballotcore/contexts/election-core/turnout-reports/ports"
)

type ReportQueryUseCase struct {
	Source ports.ReportSource
}

func (uc ReportQueryUseCase) ElectionSummary(ctx context.Context, electionID string) (entities.ElectionSummary, error) {
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return entities.ElectionSummary{}, domainerrors.ErrInvalidReportInput
	}
	facts, found, err := uc.Source.GetElectionFacts(ctx, electionID)
	if err != nil {
		return entities.ElectionSummary{}, err
	}
	if !found {
		return entities.ElectionSummary{}, domainerrors.ErrElectionNotFound
	}
	tallies, err := uc.Source.ListCandidateTallies(ctx, electionID)
	if err != nil {
		return entities.ElectionSummary{}, err
	}
	totalVotes, err := uc.Source.CountVotesByElection(ctx, electionID)
	if err != nil {
		return entities.ElectionSummary{}, err
	}

	return entities.ElectionSummary{
		ElectionID:       facts.ElectionID,
		OrganizationID:   facts.OrganizationID,
		Title:            facts.Title,
		Status:           facts.Status,
		TotalVotes:       totalVotes,
		TotalVoters:      facts.TotalVoters,
		TurnoutPct:       turnoutPct(totalVotes, facts.TotalVoters),
		LeadingCandidate: leadingCandidate(tallies),
		Candidates:       tallies,
		ResultsPublished: facts.ResultsPublished,
	}, nil
}

func (uc ReportQueryUseCase) RegistrySummary(ctx context.Context, organizationID string) (entities.RegistrySummary, error) {
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return entities.RegistrySummary{}, domainerrors.ErrInvalidReportInput
	}
	facts, err := uc.Source.GetRegistryFacts(ctx, organizationID)
	if err != nil {
		return entities.RegistrySummary{}, err
	}
	return entities.RegistrySummary{
		OrganizationID:  organizationID,
		TotalVoters:     facts.TotalVoters,
		VotedCount:      facts.VotedCount,
		RemainingVoters: facts.TotalVoters - facts.VotedCount,
		TurnoutPct:      turnoutPct(facts.VotedCount, facts.TotalVoters),
		LockedVoters:    facts.LockedVoters,
	}, nil
}

func turnoutPct(votes, totalVoters int) int {
	if totalVoters <= 0 {
		return 0
	}
	return int(float64(votes)/float64(totalVoters)*100 + 0.5)
}

// leadingCandidate picks the active candidate with the highest tally,
// breaking ties deterministically by lowest candidate id.
func leadingCandidate(tallies []entities.CandidateTally) *entities.CandidateTally {
	var leader *entities.CandidateTally
	for i := range tallies {
		candidate := tallies[i]
		if !candidate.Active {
			continue
		}
		switch {
		case leader == nil,
			candidate.VoteCount > leader.VoteCount,
			candidate.VoteCount == leader.VoteCount && candidate.CandidateID < leader.CandidateID:
			leader = &tallies[i]
		}
	}
	if leader == nil {
		return nil
	}
	copied := *leader
	return &copied
}
