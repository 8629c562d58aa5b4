package queries

import (
	"context"
	"strings"

	"ballotcore/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-core/vote-ledger/domain/errors"
	"ballotcore/contexts/election-core/vote-ledger/ports"
)

type VoteQueryUseCase struct {
	Votes ports.VoteRepository
}

func (uc VoteQueryUseCase) GetVote(ctx context.Context, voteID string) (entities.Vote, error) {
	if strings.TrimSpace(voteID) == "" {
		return entities.Vote{}, domainerrors.ErrInvalidVoteInput
	}
	return uc.Votes.GetVote(ctx, strings.TrimSpace(voteID))
}

func (uc VoteQueryUseCase) VotesByElection(ctx context.Context, electionID string) ([]entities.Vote, error) {
	if strings.TrimSpace(electionID) == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	return uc.Votes.ListVotesByElection(ctx, strings.TrimSpace(electionID))
}

func (uc VoteQueryUseCase) VotesByVoter(ctx context.Context, voterRegistryID string) ([]entities.Vote, error) {
	if strings.TrimSpace(voterRegistryID) == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	return uc.Votes.ListVotesByVoter(ctx, strings.TrimSpace(voterRegistryID))
}

func (uc VoteQueryUseCase) HasVoted(ctx context.Context, electionID, voterRegistryID string) (bool, error) {
	if strings.TrimSpace(electionID) == "" || strings.TrimSpace(voterRegistryID) == "" {
		return false, domainerrors.ErrInvalidVoteInput
	}
	return uc.Votes.HasVoted(ctx, strings.TrimSpace(electionID), strings.TrimSpace(voterRegistryID))
}

func (uc VoteQueryUseCase) CountByElection(ctx context.Context, electionID string) (int, error) {
	if strings.TrimSpace(electionID) == "" {
		return 0, domainerrors.ErrInvalidVoteInput
	}
	return uc.Votes.CountVotesByElection(ctx, strings.TrimSpace(electionID))
}

func (uc VoteQueryUseCase) CountByCandidate(ctx context.Context, candidateID string) (int, error) {
	if strings.TrimSpace(candidateID) == "" {
		return 0, domainerrors.ErrInvalidVoteInput
	}
	return uc.Votes.CountVotesByCandidate(ctx, strings.TrimSpace(candidateID))
}
