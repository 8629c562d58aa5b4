package turnoutreports_test

import (
	"context"
	"errors"
	"testing"

	turnoutreports "ballotcore/contexts/election-core/turnout-reports"
	"ballotcore/contexts/election-core/turnout-reports/domain/entities"
	domainerrors "ballotcore/contexts/election-core/turnout-reports/domain/errors"
	"ballotcore/contexts/election-core/turnout-reports/ports"
)

func TestElectionSummaryComputesTurnoutAndLeader(t *testing.T) {
	module := turnoutreports.NewInMemoryModule(nil)
	module.Store.SetElection(ports.ElectionFacts{
		ElectionID:       "election-1",
		OrganizationID:   "org-1",
		Title:            "SUG Presidential",
		Status:           "COMPLETED",
		TotalVoters:      40,
		ResultsPublished: true,
	})
	module.Store.SetCandidates("election-1", []entities.CandidateTally{
		{CandidateID: "candidate-a", Name: "Ada", Active: true, VoteCount: 9},
		{CandidateID: "candidate-b", Name: "Bayo", Active: true, VoteCount: 8},
		{CandidateID: "candidate-c", Name: "Chike", Active: false, VoteCount: 100},
	})
	module.Store.SetVoteCount("election-1", 17)

	summary, err := module.Reports.ElectionSummary(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("election summary failed: %v", err)
	}
	// 17 of 40 rounds to 43.
	if summary.TurnoutPct != 43 {
		t.Fatalf("expected turnout 43, got %d", summary.TurnoutPct)
	}
	if summary.TotalVotes != 17 || summary.TotalVoters != 40 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	// Inactive candidates never lead regardless of tally.
	if summary.LeadingCandidate == nil || summary.LeadingCandidate.CandidateID != "candidate-a" {
		t.Fatalf("expected candidate-a leading, got %+v", summary.LeadingCandidate)
	}
	if !summary.ResultsPublished {
		t.Fatalf("expected results published flag carried through")
	}
}

func TestElectionSummaryTieBreaksByCandidateID(t *testing.T) {
	module := turnoutreports.NewInMemoryModule(nil)
	module.Store.SetElection(ports.ElectionFacts{
		ElectionID:     "election-1",
		OrganizationID: "org-1",
		Title:          "Tied Race",
		Status:         "ACTIVE",
		TotalVoters:    10,
	})
	module.Store.SetCandidates("election-1", []entities.CandidateTally{
		{CandidateID: "candidate-z", Name: "Zara", Active: true, VoteCount: 4},
		{CandidateID: "candidate-a", Name: "Ada", Active: true, VoteCount: 4},
	})
	module.Store.SetVoteCount("election-1", 8)

	summary, err := module.Reports.ElectionSummary(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("election summary failed: %v", err)
	}
	if summary.LeadingCandidate == nil || summary.LeadingCandidate.CandidateID != "candidate-a" {
		t.Fatalf("expected lowest-id tie-break to candidate-a, got %+v", summary.LeadingCandidate)
	}
}

func TestElectionSummaryZeroVoters(t *testing.T) {
	module := turnoutreports.NewInMemoryModule(nil)
	module.Store.SetElection(ports.ElectionFacts{
		ElectionID:     "election-1",
		OrganizationID: "org-1",
		Title:          "Empty Roll",
		Status:         "ACTIVE",
	})

	summary, err := module.Reports.ElectionSummary(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("election summary failed: %v", err)
	}
	if summary.TurnoutPct != 0 {
		t.Fatalf("expected turnout 0 with no enrolled voters, got %d", summary.TurnoutPct)
	}
	if summary.LeadingCandidate != nil {
		t.Fatalf("expected no leading candidate without candidates")
	}
}

func TestElectionSummaryUnknownElection(t *testing.T) {
	module := turnoutreports.NewInMemoryModule(nil)

	if _, err := module.Reports.ElectionSummary(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegistrySummary(t *testing.T) {
	module := turnoutreports.NewInMemoryModule(nil)
	module.Store.SetRegistry("org-1", ports.RegistryFacts{
		TotalVoters:  50,
		VotedCount:   20,
		LockedVoters: 3,
	})

	summary, err := module.Reports.RegistrySummary(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("registry summary failed: %v", err)
	}
	if summary.RemainingVoters != 30 {
		t.Fatalf("expected 30 remaining, got %d", summary.RemainingVoters)
	}
	if summary.TurnoutPct != 40 {
		t.Fatalf("expected turnout 40, got %d", summary.TurnoutPct)
	}
	if summary.LockedVoters != 3 {
		t.Fatalf("expected 3 locked, got %d", summary.LockedVoters)
	}
}
