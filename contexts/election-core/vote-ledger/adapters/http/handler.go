package httpadapter

import (
	"context"
	"log/slog"

	"ballotcore/contexts/election-core/vote-ledger/application/commands"
	"ballotcore/contexts/election-core/vote-ledger/application/queries"
	"ballotcore/contexts/election-core/vote-ledger/domain/entities"
	httptransport "ballotcore/contexts/election-core/vote-ledger/transport/http"
)

type Handler struct {
	Votes   commands.VoteUseCase
	Queries queries.VoteQueryUseCase
	Logger  *slog.Logger
}

func (h Handler) CastVoteHandler(ctx context.Context, req httptransport.CastVoteRequest) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		ElectionID:  req.ElectionID,
		CandidateID: req.CandidateID,
		Voter: commands.VerifiedVoterHandle{
			VoterRegistryID:    req.VoterRegistryID,
			OrganizationID:     req.OrganizationID,
			VerificationMethod: req.VerificationMethod,
		},
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		Anonymous:   req.Anonymous,
		WriteInName: req.WriteInName,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return toVoteResponse(vote), nil
}

func (h Handler) GetVoteHandler(ctx context.Context, voteID string) (httptransport.VoteResponse, error) {
	vote, err := h.Queries.GetVote(ctx, voteID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return toVoteResponse(vote), nil
}

func (h Handler) ListByElectionHandler(ctx context.Context, electionID string) (httptransport.VoteListResponse, error) {
	votes, err := h.Queries.VotesByElection(ctx, electionID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	return toVoteListResponse(votes), nil
}

func (h Handler) ListByVoterHandler(ctx context.Context, voterRegistryID string) (httptransport.VoteListResponse, error) {
	votes, err := h.Queries.VotesByVoter(ctx, voterRegistryID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	return toVoteListResponse(votes), nil
}

func (h Handler) HasVotedHandler(ctx context.Context, electionID, voterRegistryID string) (httptransport.HasVotedResponse, error) {
	voted, err := h.Queries.HasVoted(ctx, electionID, voterRegistryID)
	if err != nil {
		return httptransport.HasVotedResponse{}, err
	}
	return httptransport.HasVotedResponse{
		ElectionID:      electionID,
		VoterRegistryID: voterRegistryID,
		HasVoted:        voted,
	}, nil
}

// toVoteResponse hides the registry link on anonymous ballots.
func toVoteResponse(vote entities.Vote) httptransport.VoteResponse {
	response := httptransport.VoteResponse{
		VoteID:             vote.ID,
		ElectionID:         vote.ElectionID,
		CandidateID:        vote.CandidateID,
		VoterRegistryID:    vote.VoterRegistryID,
		CastAt:             vote.CastAt,
		Anonymous:          vote.Anonymous,
		WriteInName:        vote.WriteInName,
		VerificationMethod: vote.VerificationMethod,
	}
	if vote.Anonymous {
		response.VoterRegistryID = ""
	}
	return response
}

func toVoteListResponse(votes []entities.Vote) httptransport.VoteListResponse {
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, toVoteResponse(vote))
	}
	return httptransport.VoteListResponse{
		Items: items,
		Total: len(items),
	}
}
