package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/election-core/vote-ledger/application"
	"ballotcore/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-core/vote-ledger/domain/errors"
	"ballotcore/contexts/election-core/vote-ledger/ports"
	"ballotcore/internal/shared/record"
)

// VerifiedVoterHandle is the proof of a completed identity confirmation that
// castVote trusts. It performs no OTP check of its own.
type VerifiedVoterHandle struct {
	VoterRegistryID    string
	OrganizationID     string
	VerificationMethod string
}

type CastVoteCommand struct {
	ElectionID  string
	CandidateID string
	Voter       VerifiedVoterHandle
	IPAddress   string
	UserAgent   string
	Anonymous   bool
	WriteInName string
}

// VoteUseCase is the transactional critical path. Every guard fails closed;
// the storage-level unique index on (election_id, voter_registry_id) is what
// actually serializes concurrent duplicates.
type VoteUseCase struct {
	Votes     ports.VoteRepository
	Elections ports.ElectionDirectory
	Voters    ports.VoterDirectory
	Policies  ports.PolicyDirectory
	Notifier  ports.ConfirmationNotifier
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	voterRegistryID := strings.TrimSpace(cmd.Voter.VoterRegistryID)
	if electionID == "" || candidateID == "" || voterRegistryID == "" {
		return entities.Vote{}, domainerrors.ErrInvalidVoteInput
	}

	election, found, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !found {
		return entities.Vote{}, domainerrors.ErrElectionNotFound
	}
	now := uc.now()
	if !election.Open(now) {
		return entities.Vote{}, domainerrors.ErrElectionNotOpen
	}

	candidate, found, err := uc.Elections.GetCandidate(ctx, candidateID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !found {
		return entities.Vote{}, domainerrors.ErrCandidateNotFound
	}
	if candidate.ElectionID != electionID {
		return entities.Vote{}, domainerrors.ErrCandidateNotInElection
	}
	if !candidate.Active {
		return entities.Vote{}, domainerrors.ErrCandidateInactive
	}
	writeInName := strings.TrimSpace(cmd.WriteInName)
	if writeInName != "" && (!election.AllowWriteIn || !candidate.WriteIn) {
		return entities.Vote{}, domainerrors.ErrWriteInNotAllowed
	}

	voter, found, err := uc.Voters.GetVoter(ctx, voterRegistryID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !found {
		return entities.Vote{}, domainerrors.ErrVoterNotFound
	}
	if voter.OrganizationID != election.OrganizationID {
		return entities.Vote{}, domainerrors.ErrCrossTenant
	}
	if voter.Used {
		return entities.Vote{}, domainerrors.ErrAlreadyVoted
	}
	if voter.Locked {
		return entities.Vote{}, domainerrors.ErrVoterLocked
	}

	voted, err := uc.Votes.HasVoted(ctx, electionID, voterRegistryID)
	if err != nil {
		return entities.Vote{}, err
	}
	if voted {
		return entities.Vote{}, domainerrors.ErrAlreadyVoted
	}

	hasPolicy, err := uc.Policies.HasActivePolicy(ctx, election.OrganizationID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !hasPolicy {
		return entities.Vote{}, domainerrors.ErrNoActivePolicy
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	vote := entities.Vote{
		Record:             record.New(voteID, now),
		ElectionID:         electionID,
		CandidateID:        candidateID,
		VoterRegistryID:    voterRegistryID,
		CastAt:             now,
		IPAddress:          strings.TrimSpace(cmd.IPAddress),
		UserAgent:          strings.TrimSpace(cmd.UserAgent),
		Anonymous:          cmd.Anonymous,
		WriteInName:        writeInName,
		VerificationMethod: strings.TrimSpace(cmd.Voter.VerificationMethod),
	}
	if err := uc.Votes.ApplyCastVote(ctx, vote); err != nil {
		return entities.Vote{}, err
	}
	logger.Info("vote recorded",
		"event", "vote_ledger_vote_recorded",
		"module", "election-core/vote-ledger",
		"layer", "application",
		"vote_id", vote.ID,
		"election_id", vote.ElectionID,
		"candidate_id", vote.CandidateID,
	)

	uc.confirm(ctx, vote)
	return vote, nil
}

func (uc VoteUseCase) confirm(ctx context.Context, vote entities.Vote) {
	if uc.Notifier == nil {
		return
	}
	if err := uc.Notifier.VoteRecorded(ctx, vote); err != nil {
		application.ResolveLogger(uc.Logger).Error("vote confirmation failed",
			"event", "vote_ledger_confirmation_failed",
			"module", "election-core/vote-ledger",
			"layer", "application",
			"vote_id", vote.ID,
			"error", err.Error(),
		)
	}
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
