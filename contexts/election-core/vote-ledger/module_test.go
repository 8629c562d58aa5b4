package voteledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	voteledger "ballotcore/contexts/election-core/vote-ledger"
	"ballotcore/contexts/election-core/vote-ledger/application/commands"
	domainerrors "ballotcore/contexts/election-core/vote-ledger/domain/errors"
	"ballotcore/contexts/election-core/vote-ledger/ports"
	httptransport "ballotcore/contexts/election-core/vote-ledger/transport/http"
)

func newOpenElectionModule(t *testing.T) voteledger.Module {
	t.Helper()
	module := voteledger.NewInMemoryModule(nil)
	now := time.Now().UTC()
	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "election-1",
		OrganizationID: "org-1",
		Status:         "ACTIVE",
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(time.Hour),
		TotalVoters:    10,
	})
	module.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "candidate-1",
		ElectionID:  "election-1",
		Active:      true,
	})
	module.Store.SetVoter(ports.VoterProjection{
		VoterRegistryID: "voter-1",
		OrganizationID:  "org-1",
	})
	module.Store.SetActivePolicy("org-1", true)
	return module
}

func castVoteCommand(voterRegistryID string) commands.CastVoteCommand {
	return commands.CastVoteCommand{
		ElectionID:  "election-1",
		CandidateID: "candidate-1",
		Voter: commands.VerifiedVoterHandle{
			VoterRegistryID:    voterRegistryID,
			OrganizationID:     "org-1",
			VerificationMethod: "otp",
		},
	}
}

func TestCastVoteCommitsAllEffects(t *testing.T) {
	module := newOpenElectionModule(t)

	vote, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1"))
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if vote.ID == "" || vote.CastAt.IsZero() {
		t.Fatalf("expected persisted vote, got %+v", vote)
	}
	if got := module.Store.Tally("candidate-1"); got != 1 {
		t.Fatalf("expected tally 1, got %d", got)
	}
	// 1 of 10 voters.
	if got := module.Store.Turnout("election-1"); got != 10 {
		t.Fatalf("expected turnout 10, got %d", got)
	}
	voter, _, err := module.Store.GetVoter(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if !voter.Used {
		t.Fatalf("expected voter marked used")
	}
	confirmations := module.Store.Confirmations()
	if len(confirmations) != 1 || confirmations[0].ID != vote.ID {
		t.Fatalf("expected one confirmation for the vote, got %d", len(confirmations))
	}
}

func TestCastVoteRejectsSecondBallot(t *testing.T) {
	module := newOpenElectionModule(t)

	if _, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1")); err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	_, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1"))
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already-voted conflict, got %v", err)
	}

	count, err := module.Queries.CountByElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one vote, got %d", count)
	}
}

func TestConcurrentCastsYieldExactlyOneVote(t *testing.T) {
	module := newOpenElectionModule(t)
	const callers = 16

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domainerrors.ErrAlreadyVoted):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != callers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d and %d", callers-1, successes, conflicts)
	}
	if got := module.Store.Tally("candidate-1"); got != 1 {
		t.Fatalf("expected tally 1, got %d", got)
	}
}

func TestCastVoteRequiresOpenElection(t *testing.T) {
	module := newOpenElectionModule(t)
	now := time.Now().UTC()

	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "election-1",
		OrganizationID: "org-1",
		Status:         "DRAFT",
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(time.Hour),
		TotalVoters:    10,
	})
	if _, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1")); !errors.Is(err, domainerrors.ErrElectionNotOpen) {
		t.Fatalf("expected not-open conflict on draft, got %v", err)
	}

	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "election-1",
		OrganizationID: "org-1",
		Status:         "ACTIVE",
		StartTime:      now.Add(-2 * time.Hour),
		EndTime:        now.Add(-time.Hour),
		TotalVoters:    10,
	})
	if _, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1")); !errors.Is(err, domainerrors.ErrElectionNotOpen) {
		t.Fatalf("expected not-open conflict past end time, got %v", err)
	}
}

func TestCastVoteValidatesCandidate(t *testing.T) {
	module := newOpenElectionModule(t)

	cmd := castVoteCommand("voter-1")
	cmd.CandidateID = "candidate-missing"
	if _, err := module.Votes.CastVote(context.Background(), cmd); !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected candidate not found, got %v", err)
	}

	module.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "candidate-other",
		ElectionID:  "election-2",
		Active:      true,
	})
	cmd.CandidateID = "candidate-other"
	if _, err := module.Votes.CastVote(context.Background(), cmd); !errors.Is(err, domainerrors.ErrCandidateNotInElection) {
		t.Fatalf("expected wrong-election conflict, got %v", err)
	}

	module.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "candidate-1",
		ElectionID:  "election-1",
		Active:      false,
	})
	cmd.CandidateID = "candidate-1"
	if _, err := module.Votes.CastVote(context.Background(), cmd); !errors.Is(err, domainerrors.ErrCandidateInactive) {
		t.Fatalf("expected inactive-candidate conflict, got %v", err)
	}
}

func TestCastVoteRejectsCrossTenantVoter(t *testing.T) {
	module := newOpenElectionModule(t)
	module.Store.SetVoter(ports.VoterProjection{
		VoterRegistryID: "voter-foreign",
		OrganizationID:  "org-2",
	})

	if _, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-foreign")); !errors.Is(err, domainerrors.ErrCrossTenant) {
		t.Fatalf("expected cross-tenant conflict, got %v", err)
	}
}

func TestCastVoteRejectsLockedVoter(t *testing.T) {
	module := newOpenElectionModule(t)
	module.Store.SetVoter(ports.VoterProjection{
		VoterRegistryID: "voter-1",
		OrganizationID:  "org-1",
		Locked:          true,
	})

	if _, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1")); !errors.Is(err, domainerrors.ErrVoterLocked) {
		t.Fatalf("expected locked-voter conflict, got %v", err)
	}
}

func TestCastVoteFailsClosedWithoutPolicy(t *testing.T) {
	module := newOpenElectionModule(t)
	module.Store.SetActivePolicy("org-1", false)

	if _, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1")); !errors.Is(err, domainerrors.ErrNoActivePolicy) {
		t.Fatalf("expected no-active-policy error, got %v", err)
	}
}

func TestCastVoteGuardsWriteIns(t *testing.T) {
	module := newOpenElectionModule(t)

	cmd := castVoteCommand("voter-1")
	cmd.WriteInName = "Jordan Doe"
	if _, err := module.Votes.CastVote(context.Background(), cmd); !errors.Is(err, domainerrors.ErrWriteInNotAllowed) {
		t.Fatalf("expected write-in rejection, got %v", err)
	}

	now := time.Now().UTC()
	module.Store.SetElection(ports.ElectionProjection{
		ElectionID:     "election-1",
		OrganizationID: "org-1",
		Status:         "ACTIVE",
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(time.Hour),
		TotalVoters:    10,
		AllowWriteIn:   true,
	})
	module.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "candidate-1",
		ElectionID:  "election-1",
		Active:      true,
		WriteIn:     true,
	})
	vote, err := module.Votes.CastVote(context.Background(), cmd)
	if err != nil {
		t.Fatalf("write-in cast failed: %v", err)
	}
	if vote.WriteInName != "Jordan Doe" {
		t.Fatalf("expected write-in name preserved, got %q", vote.WriteInName)
	}
}

func TestAnonymousVoteHidesRegistryLink(t *testing.T) {
	module := newOpenElectionModule(t)

	response, err := module.Handler.CastVoteHandler(context.Background(), httptransport.CastVoteRequest{
		ElectionID:         "election-1",
		CandidateID:        "candidate-1",
		VoterRegistryID:    "voter-1",
		OrganizationID:     "org-1",
		VerificationMethod: "otp",
		Anonymous:          true,
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if response.VoterRegistryID != "" {
		t.Fatalf("expected registry id hidden on anonymous ballot")
	}

	// The ledger still enforces one vote per voter underneath.
	if _, err := module.Votes.CastVote(context.Background(), castVoteCommand("voter-1")); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected already-voted conflict, got %v", err)
	}
}
