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

type AddCandidateCommand struct {
	ElectionID string
	Name       string
	Position   string
	WriteIn    bool
}

type UpdateCandidateCommand struct {
	CandidateID string
	ElectionID  string
	Name        string
	Position    string
}

// CandidateUseCase manages the ballot roster. All mutations are DRAFT-only:
// once an election leaves DRAFT the roster is frozen so vote counts stay
// attributable.
type CandidateUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc CandidateUseCase) AddCandidate(ctx context.Context, cmd AddCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.ElectionID) == "" || strings.TrimSpace(cmd.Name) == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidateInput
	}
	election, err := uc.Elections.GetElection(ctx, strings.TrimSpace(cmd.ElectionID))
	if err != nil {
		return entities.Candidate{}, err
	}
	if !election.IsDraft() {
		return entities.Candidate{}, domainerrors.ErrElectionNotDraft
	}
	if cmd.WriteIn && !election.AllowWriteIn {
		return entities.Candidate{}, domainerrors.ErrWriteInNotAllowed
	}

	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate := entities.Candidate{
		Record:     record.New(candidateID, uc.now()),
		ElectionID: election.ID,
		Name:       strings.TrimSpace(cmd.Name),
		Position:   strings.TrimSpace(cmd.Position),
		Active:     true,
		WriteIn:    cmd.WriteIn,
	}
	if err := uc.Candidates.SaveCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}
	logger.Info("candidate added",
		"event", "lifecycle_candidate_added",
		"module", "election-core/election-lifecycle",
		"layer", "application",
		"candidate_id", candidate.ID,
		"election_id", candidate.ElectionID,
	)
	return candidate, nil
}

func (uc CandidateUseCase) UpdateCandidate(ctx context.Context, cmd UpdateCandidateCommand) (entities.Candidate, error) {
	if strings.TrimSpace(cmd.CandidateID) == "" || strings.TrimSpace(cmd.Name) == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidateInput
	}
	candidate, election, err := uc.loadForMutation(ctx, cmd.CandidateID, cmd.ElectionID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if !election.IsDraft() {
		return entities.Candidate{}, domainerrors.ErrElectionNotDraft
	}

	candidate.Name = strings.TrimSpace(cmd.Name)
	candidate.Position = strings.TrimSpace(cmd.Position)
	candidate.Touch(uc.now())
	if err := uc.Candidates.UpdateCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}
	return candidate, nil
}

func (uc CandidateUseCase) ActivateCandidate(ctx context.Context, candidateID, electionID string) (entities.Candidate, error) {
	return uc.setActive(ctx, candidateID, electionID, true)
}

func (uc CandidateUseCase) DeactivateCandidate(ctx context.Context, candidateID, electionID string) (entities.Candidate, error) {
	return uc.setActive(ctx, candidateID, electionID, false)
}

func (uc CandidateUseCase) setActive(ctx context.Context, candidateID, electionID string, active bool) (entities.Candidate, error) {
	candidate, election, err := uc.loadForMutation(ctx, candidateID, electionID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if !election.IsDraft() {
		return entities.Candidate{}, domainerrors.ErrElectionNotDraft
	}
	if candidate.Active == active {
		return candidate, nil
	}
	candidate.Active = active
	candidate.Touch(uc.now())
	if err := uc.Candidates.UpdateCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}
	return candidate, nil
}

func (uc CandidateUseCase) loadForMutation(ctx context.Context, candidateID, electionID string) (entities.Candidate, entities.Election, error) {
	candidate, err := uc.Candidates.GetCandidate(ctx, strings.TrimSpace(candidateID))
	if err != nil {
		return entities.Candidate{}, entities.Election{}, err
	}
	if strings.TrimSpace(electionID) != "" && candidate.ElectionID != strings.TrimSpace(electionID) {
		return entities.Candidate{}, entities.Election{}, domainerrors.ErrCandidateNotFound
	}
	election, err := uc.Elections.GetElection(ctx, candidate.ElectionID)
	if err != nil {
		return entities.Candidate{}, entities.Election{}, err
	}
	return candidate, election, nil
}

func (uc CandidateUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
