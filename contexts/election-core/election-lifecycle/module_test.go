package electionlifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	electionlifecycle "ballotcore/contexts/election-core/election-lifecycle"
	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	domainerrors "ballotcore/contexts/election-core/election-lifecycle/domain/errors"
	httptransport "ballotcore/contexts/election-core/election-lifecycle/transport/http"
)

func TestElectionCreateStartsAsDraft(t *testing.T) {
	module := electionlifecycle.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()

	created, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "Board Election 2026",
		StartTime:      now.Add(time.Hour),
		EndTime:        now.Add(25 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if created.Status != string(entities.ElectionStatusDraft) {
		t.Fatalf("expected draft status, got %s", created.Status)
	}
	if created.MaxVotesPerVoter != 1 {
		t.Fatalf("expected default max votes per voter 1, got %d", created.MaxVotesPerVoter)
	}
}

func TestElectionWindowValidation(t *testing.T) {
	module := electionlifecycle.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"end before start", now.Add(2 * time.Hour), now.Add(time.Hour), domainerrors.ErrElectionWindowInvalid},
		{"window already past", now.Add(-3 * time.Hour), now.Add(-2 * time.Hour), domainerrors.ErrElectionWindowInvalid},
		{"too short", now.Add(time.Hour), now.Add(time.Hour + 30*time.Minute), domainerrors.ErrElectionDurationTooShort},
		{"too long", now.Add(time.Hour), now.Add(time.Hour + 721*time.Hour), domainerrors.ErrElectionDurationTooLong},
	}
	for _, tc := range cases {
		_, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
			OrganizationID: "org-1",
			Title:          "Invalid Window",
			StartTime:      tc.start,
			EndTime:        tc.end,
		})
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestElectionActivationGuards(t *testing.T) {
	module := electionlifecycle.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()

	future, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "Not Yet Started",
		StartTime:      now.Add(2 * time.Hour),
		EndTime:        now.Add(26 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if _, err := module.Handler.ActivateElectionHandler(context.Background(), future.ElectionID); !errors.Is(err, domainerrors.ErrActivateBeforeStart) {
		t.Fatalf("expected activate-before-start error, got %v", err)
	}

	open, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "Open Now",
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(23 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	activated, err := module.Handler.ActivateElectionHandler(context.Background(), open.ElectionID)
	if err != nil {
		t.Fatalf("activate election failed: %v", err)
	}
	if activated.Status != string(entities.ElectionStatusActive) {
		t.Fatalf("expected active status, got %s", activated.Status)
	}
	if _, err := module.Handler.ActivateElectionHandler(context.Background(), open.ElectionID); !errors.Is(err, domainerrors.ErrElectionAlreadyActive) {
		t.Fatalf("expected already-active error, got %v", err)
	}
}

func TestElectionPauseAndResume(t *testing.T) {
	module := electionlifecycle.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()

	created, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "Pausable",
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(23 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if _, err := module.Handler.PauseElectionHandler(context.Background(), created.ElectionID); !errors.Is(err, domainerrors.ErrElectionNotActive) {
		t.Fatalf("expected not-active error for draft pause, got %v", err)
	}
	if _, err := module.Handler.ActivateElectionHandler(context.Background(), created.ElectionID); err != nil {
		t.Fatalf("activate election failed: %v", err)
	}
	paused, err := module.Handler.PauseElectionHandler(context.Background(), created.ElectionID)
	if err != nil {
		t.Fatalf("pause election failed: %v", err)
	}
	if paused.Status != string(entities.ElectionStatusPaused) {
		t.Fatalf("expected paused status, got %s", paused.Status)
	}
	resumed, err := module.Handler.ActivateElectionHandler(context.Background(), created.ElectionID)
	if err != nil {
		t.Fatalf("resume election failed: %v", err)
	}
	if resumed.Status != string(entities.ElectionStatusActive) {
		t.Fatalf("expected active status after resume, got %s", resumed.Status)
	}
}

func TestCandidateRosterFrozenOutsideDraft(t *testing.T) {
	module := electionlifecycle.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()

	created, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "Roster Freeze",
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(23 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	candidate, err := module.Handler.AddCandidateHandler(context.Background(), created.ElectionID, httptransport.AddCandidateRequest{
		Name:     "Alice Candidate",
		Position: "Treasurer",
	})
	if err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}
	if !candidate.Active {
		t.Fatalf("expected new candidate to be active")
	}

	if _, err := module.Handler.ActivateElectionHandler(context.Background(), created.ElectionID); err != nil {
		t.Fatalf("activate election failed: %v", err)
	}
	_, err = module.Handler.AddCandidateHandler(context.Background(), created.ElectionID, httptransport.AddCandidateRequest{
		Name: "Late Entry",
	})
	if !errors.Is(err, domainerrors.ErrElectionNotDraft) {
		t.Fatalf("expected roster-frozen error, got %v", err)
	}
	_, err = module.Handler.UpdateCandidateHandler(context.Background(), created.ElectionID, candidate.CandidateID, httptransport.UpdateCandidateRequest{
		Name: "Alice Renamed",
	})
	if !errors.Is(err, domainerrors.ErrElectionNotDraft) {
		t.Fatalf("expected roster-frozen error on update, got %v", err)
	}
}

func TestWriteInCandidateRequiresPolicy(t *testing.T) {
	module := electionlifecycle.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()

	noWriteIn, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "No Write-Ins",
		StartTime:      now.Add(time.Hour),
		EndTime:        now.Add(25 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	_, err = module.Handler.AddCandidateHandler(context.Background(), noWriteIn.ElectionID, httptransport.AddCandidateRequest{
		Name:    "Write-In Hopeful",
		WriteIn: true,
	})
	if !errors.Is(err, domainerrors.ErrWriteInNotAllowed) {
		t.Fatalf("expected write-in-not-allowed error, got %v", err)
	}
}

func TestCompleteRecomputesTurnout(t *testing.T) {
	module := electionlifecycle.NewInMemoryModule(nil, nil)
	now := time.Now().UTC()

	created, err := module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "Turnout Check",
		StartTime:      now.Add(-26 * time.Hour),
		EndTime:        now.Add(-time.Hour),
	})
	if err == nil {
		t.Fatalf("expected past window to be rejected")
	}

	// Seed an already-ended election directly: creation rejects past windows.
	created, err = module.Handler.CreateElectionHandler(context.Background(), httptransport.CreateElectionRequest{
		OrganizationID: "org-1",
		Title:          "Turnout Check",
		StartTime:      now.Add(-time.Hour),
		EndTime:        now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	if _, err := module.Handler.CompleteElectionHandler(context.Background(), created.ElectionID); !errors.Is(err, domainerrors.ErrCompleteBeforeEnd) {
		t.Fatalf("expected complete-before-end error, got %v", err)
	}

	seed := []entities.Election{endedElection("election-ended", "org-2", 40, now)}
	module = electionlifecycle.NewInMemoryModule(seed, nil)
	module.Store.SetVoteCount("election-ended", 17)

	completed, err := module.Handler.CompleteElectionHandler(context.Background(), "election-ended")
	if err != nil {
		t.Fatalf("complete election failed: %v", err)
	}
	if completed.Status != string(entities.ElectionStatusCompleted) {
		t.Fatalf("expected completed status, got %s", completed.Status)
	}
	// 17 of 40 voters rounds to 43 percent.
	if completed.VoterTurnout != 43 {
		t.Fatalf("expected turnout 43, got %d", completed.VoterTurnout)
	}
	if _, err := module.Handler.CompleteElectionHandler(context.Background(), "election-ended"); !errors.Is(err, domainerrors.ErrElectionCompleted) {
		t.Fatalf("expected already-completed error, got %v", err)
	}
}

func TestPublishResultsOnlyOnceAfterCompletion(t *testing.T) {
	now := time.Now().UTC()
	seed := []entities.Election{endedElection("election-pub", "org-1", 10, now)}
	module := electionlifecycle.NewInMemoryModule(seed, nil)

	if _, err := module.Handler.PublishResultsHandler(context.Background(), "election-pub"); !errors.Is(err, domainerrors.ErrElectionNotCompleted) {
		t.Fatalf("expected not-completed error, got %v", err)
	}
	if _, err := module.Handler.CompleteElectionHandler(context.Background(), "election-pub"); err != nil {
		t.Fatalf("complete election failed: %v", err)
	}
	published, err := module.Handler.PublishResultsHandler(context.Background(), "election-pub")
	if err != nil {
		t.Fatalf("publish results failed: %v", err)
	}
	if !published.ResultsPublished {
		t.Fatalf("expected results published flag set")
	}
	if _, err := module.Handler.PublishResultsHandler(context.Background(), "election-pub"); !errors.Is(err, domainerrors.ErrResultsAlreadyPublished) {
		t.Fatalf("expected already-published error, got %v", err)
	}
}

func TestSweepActivatesAndCompletes(t *testing.T) {
	now := time.Now().UTC()
	seed := []entities.Election{
		draftElection("election-due-active", "org-1", now.Add(-time.Hour), now.Add(23*time.Hour)),
		endedElection("election-due-complete", "org-1", 20, now),
	}
	module := electionlifecycle.NewInMemoryModule(seed, nil)
	module.Store.SetVoteCount("election-due-complete", 5)

	if err := module.Sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	opened, err := module.Handler.GetElectionHandler(context.Background(), "election-due-active")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if opened.Status != string(entities.ElectionStatusActive) {
		t.Fatalf("expected sweep to activate, got %s", opened.Status)
	}

	closed, err := module.Handler.GetElectionHandler(context.Background(), "election-due-complete")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if closed.Status != string(entities.ElectionStatusCompleted) {
		t.Fatalf("expected sweep to complete, got %s", closed.Status)
	}
	if closed.VoterTurnout != 25 {
		t.Fatalf("expected turnout 25, got %d", closed.VoterTurnout)
	}

	// Second run is a no-op on both rows.
	if err := module.Sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
}

func TestSweepCompletionCarriesTurnoutInOneUpdate(t *testing.T) {
	now := time.Now().UTC()
	seed := []entities.Election{endedElection("election-atomic", "org-1", 4, now)}
	module := electionlifecycle.NewInMemoryModule(seed, nil)
	module.Store.SetVoteCount("election-atomic", 1)

	before, err := module.Store.GetElection(context.Background(), "election-atomic")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}

	if err := module.Sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	after, err := module.Store.GetElection(context.Background(), "election-atomic")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if after.Status != entities.ElectionStatusCompleted {
		t.Fatalf("expected completed election, got %s", after.Status)
	}
	if after.VoterTurnout != 25 {
		t.Fatalf("expected turnout 25, got %d", after.VoterTurnout)
	}
	// Status and turnout must land in the same store update: a completed
	// row is never revisited, so a gap between the two would leave the
	// turnout stale forever.
	if after.Version != before.Version+1 {
		t.Fatalf("expected a single update carrying both fields, versions %d -> %d", before.Version, after.Version)
	}
}

func draftElection(id, organizationID string, start, end time.Time) entities.Election {
	election := entities.Election{
		OrganizationID:   organizationID,
		Title:            "Seeded " + id,
		Status:           entities.ElectionStatusDraft,
		StartTime:        start,
		EndTime:          end,
		MaxVotesPerVoter: 1,
	}
	election.ID = id
	election.CreatedAt = start.Add(-time.Hour)
	election.UpdatedAt = start.Add(-time.Hour)
	election.Version = 1
	return election
}

func endedElection(id, organizationID string, totalVoters int, now time.Time) entities.Election {
	election := draftElection(id, organizationID, now.Add(-25*time.Hour), now.Add(-time.Hour))
	election.Status = entities.ElectionStatusActive
	election.TotalVoters = totalVoters
	return election
}
