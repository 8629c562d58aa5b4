package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/election-core/election-lifecycle/application"
	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	domainerrors "ballotcore/contexts/election-core/election-lifecycle/domain/errors"
	"ballotcore/contexts/election-core/election-lifecycle/ports"
	"ballotcore/internal/shared/record"
)

// CreateElectionCommand is the write-model input for election creation.
type CreateElectionCommand struct {
	OrganizationID   string
	Title            string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	MaxVotesPerVoter int
	AllowWriteIn     bool
}

// UpdateElectionCommand reconfigures a draft election.
type UpdateElectionCommand struct {
	ElectionID       string
	Title            string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	MaxVotesPerVoter int
	AllowWriteIn     bool
}

// ElectionUseCase owns the election state machine: explicit transitions plus
// window validation. Every transition validates the temporal guard and the
// current status, and commits via version compare-and-swap so a lost race
// with the sweep surfaces as a conflict instead of a silent overwrite.
type ElectionUseCase struct {
	Elections ports.ElectionRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ElectionUseCase) CreateElection(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.OrganizationID) == "" || strings.TrimSpace(cmd.Title) == "" {
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}
	now := uc.now()
	if err := validateWindow(cmd.StartTime, cmd.EndTime, now); err != nil {
		logger.Warn("election window rejected",
			"event", "lifecycle_election_window_rejected",
			"module", "election-core/election-lifecycle",
			"layer", "application",
			"organization_id", strings.TrimSpace(cmd.OrganizationID),
			"error", err.Error(),
		)
		return entities.Election{}, err
	}

	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	maxVotes := cmd.MaxVotesPerVoter
	if maxVotes <= 0 {
		maxVotes = 1
	}
	election := entities.Election{
		Record:           record.New(electionID, now),
		OrganizationID:   strings.TrimSpace(cmd.OrganizationID),
		Title:            strings.TrimSpace(cmd.Title),
		Description:      strings.TrimSpace(cmd.Description),
		Status:           entities.ElectionStatusDraft,
		StartTime:        cmd.StartTime.UTC(),
		EndTime:          cmd.EndTime.UTC(),
		MaxVotesPerVoter: maxVotes,
		AllowWriteIn:     cmd.AllowWriteIn,
	}
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election created",
		"event", "lifecycle_election_created",
		"module", "election-core/election-lifecycle",
		"layer", "application",
		"election_id", election.ID,
		"organization_id", election.OrganizationID,
		"start_time", election.StartTime,
		"end_time", election.EndTime,
	)
	return election, nil
}

// UpdateElection reconfigures a draft. Active, paused and completed elections
// are immutable here: once votes can exist the window must not move.
func (uc ElectionUseCase) UpdateElection(ctx context.Context, cmd UpdateElectionCommand) (entities.Election, error) {
	if strings.TrimSpace(cmd.ElectionID) == "" || strings.TrimSpace(cmd.Title) == "" {
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Election{}, err
	}
	if !election.IsDraft() {
		return entities.Election{}, domainerrors.ErrElectionNotDraft
	}
	now := uc.now()
	if err := validateWindow(cmd.StartTime, cmd.EndTime, now); err != nil {
		return entities.Election{}, err
	}

	election.Title = strings.TrimSpace(cmd.Title)
	election.Description = strings.TrimSpace(cmd.Description)
	election.StartTime = cmd.StartTime.UTC()
	election.EndTime = cmd.EndTime.UTC()
	if cmd.MaxVotesPerVoter > 0 {
		election.MaxVotesPerVoter = cmd.MaxVotesPerVoter
	}
	election.AllowWriteIn = cmd.AllowWriteIn
	election.Touch(now)
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	return election, nil
}

// Activate moves DRAFT or PAUSED to ACTIVE when now is inside the window.
func (uc ElectionUseCase) Activate(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if election.IsActive() {
		return entities.Election{}, domainerrors.ErrElectionAlreadyActive
	}
	if election.IsCompleted() {
		return entities.Election{}, domainerrors.ErrElectionCompleted
	}
	now := uc.now()
	if !election.HasStarted(now) {
		return entities.Election{}, domainerrors.ErrActivateBeforeStart
	}
	if election.HasEnded(now) {
		return entities.Election{}, domainerrors.ErrActivateAfterEnd
	}

	election.Status = entities.ElectionStatusActive
	election.Touch(now)
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election activated",
		"event", "lifecycle_election_activated",
		"module", "election-core/election-lifecycle",
		"layer", "application",
		"election_id", election.ID,
	)
	return election, nil
}

// Pause suspends an ACTIVE election without touching its window.
func (uc ElectionUseCase) Pause(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if election.IsCompleted() {
		return entities.Election{}, domainerrors.ErrElectionCompleted
	}
	if !election.IsActive() {
		return entities.Election{}, domainerrors.ErrElectionNotActive
	}

	election.Status = entities.ElectionStatusPaused
	election.Touch(uc.now())
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election paused",
		"event", "lifecycle_election_paused",
		"module", "election-core/election-lifecycle",
		"layer", "application",
		"election_id", election.ID,
	)
	return election, nil
}

// Complete finishes a non-completed election once its end time has passed and
// recomputes voter turnout from the ledger.
func (uc ElectionUseCase) Complete(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if election.IsCompleted() {
		return entities.Election{}, domainerrors.ErrElectionCompleted
	}
	now := uc.now()
	if !election.HasEnded(now) {
		return entities.Election{}, domainerrors.ErrCompleteBeforeEnd
	}

	election.Status = entities.ElectionStatusCompleted
	election.VoterTurnout = turnoutPercent(ctx, uc.Elections, election)
	election.Touch(now)
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election completed",
		"event", "lifecycle_election_completed",
		"module", "election-core/election-lifecycle",
		"layer", "application",
		"election_id", election.ID,
		"voter_turnout", election.VoterTurnout,
	)
	return election, nil
}

// PublishResults flips the irreversible results flag on a completed election.
func (uc ElectionUseCase) PublishResults(ctx context.Context, electionID string) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if !election.IsCompleted() {
		return entities.Election{}, domainerrors.ErrElectionNotCompleted
	}
	if election.ResultsPublished {
		return entities.Election{}, domainerrors.ErrResultsAlreadyPublished
	}

	election.ResultsPublished = true
	election.Touch(uc.now())
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election results published",
		"event", "lifecycle_election_results_published",
		"module", "election-core/election-lifecycle",
		"layer", "application",
		"election_id", election.ID,
	)
	return election, nil
}

// SetTotalVoters syncs the enrolled-voter denominator used by turnout math.
// Invoked when the registry changes size; rejected after completion so the
// published turnout stays stable.
func (uc ElectionUseCase) SetTotalVoters(ctx context.Context, electionID string, totalVoters int) (entities.Election, error) {
	if totalVoters < 0 {
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
	if err != nil {
		return entities.Election{}, err
	}
	if election.IsCompleted() {
		return entities.Election{}, domainerrors.ErrElectionCompleted
	}
	election.TotalVoters = totalVoters
	election.Touch(uc.now())
	if err := uc.Elections.UpdateElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	return election, nil
}

func (uc ElectionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func validateWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return domainerrors.ErrElectionWindowInvalid
	}
	if !end.After(start) {
		return domainerrors.ErrElectionWindowInvalid
	}
	if end.Before(now) {
		return domainerrors.ErrElectionWindowInvalid
	}
	duration := end.Sub(start)
	if duration < entities.MinElectionDuration {
		return domainerrors.ErrElectionDurationTooShort
	}
	if duration > entities.MaxElectionDuration {
		return domainerrors.ErrElectionDurationTooLong
	}
	return nil
}

func turnoutPercent(ctx context.Context, repo ports.ElectionRepository, election entities.Election) int {
	if election.TotalVoters <= 0 {
		return election.VoterTurnout
	}
	votes, err := repo.CountVotesByElection(ctx, election.ID)
	if err != nil {
		return election.VoterTurnout
	}
	return int(float64(votes)/float64(election.TotalVoters)*100 + 0.5)
}
