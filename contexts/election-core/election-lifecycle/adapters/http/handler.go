package httpadapter

import (
	"context"
	"log/slog"

	"ballotcore/contexts/election-core/election-lifecycle/application/commands"
	"ballotcore/contexts/election-core/election-lifecycle/application/queries"
	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	httptransport "ballotcore/contexts/election-core/election-lifecycle/transport/http"
)

type Handler struct {
	Elections  commands.ElectionUseCase
	Candidates commands.CandidateUseCase
	Queries    queries.ElectionQueryUseCase
	Logger     *slog.Logger
}

func (h Handler) CreateElectionHandler(ctx context.Context, req httptransport.CreateElectionRequest) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		OrganizationID:   req.OrganizationID,
		Title:            req.Title,
		Description:      req.Description,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		MaxVotesPerVoter: req.MaxVotesPerVoter,
		AllowWriteIn:     req.AllowWriteIn,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) UpdateElectionHandler(ctx context.Context, electionID string, req httptransport.UpdateElectionRequest) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.UpdateElection(ctx, commands.UpdateElectionCommand{
		ElectionID:       electionID,
		Title:            req.Title,
		Description:      req.Description,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		MaxVotesPerVoter: req.MaxVotesPerVoter,
		AllowWriteIn:     req.AllowWriteIn,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) ActivateElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.Activate(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) PauseElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.Pause(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) CompleteElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.Complete(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) PublishResultsHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.PublishResults(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) SetTotalVotersHandler(ctx context.Context, electionID string, req httptransport.SetTotalVotersRequest) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.SetTotalVoters(ctx, electionID, req.TotalVoters)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Queries.GetElection(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return toElectionResponse(election), nil
}

func (h Handler) ListElectionsHandler(ctx context.Context, organizationID string, status string) (httptransport.ElectionListResponse, error) {
	elections, err := h.Queries.ListByOrganization(ctx, organizationID, entities.ElectionStatus(status))
	if err != nil {
		return httptransport.ElectionListResponse{}, err
	}
	items := make([]httptransport.ElectionResponse, 0, len(elections))
	for _, election := range elections {
		items = append(items, toElectionResponse(election))
	}
	return httptransport.ElectionListResponse{Items: items}, nil
}

func (h Handler) AddCandidateHandler(ctx context.Context, electionID string, req httptransport.AddCandidateRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.Candidates.AddCandidate(ctx, commands.AddCandidateCommand{
		ElectionID: electionID,
		Name:       req.Name,
		Position:   req.Position,
		WriteIn:    req.WriteIn,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return toCandidateResponse(candidate), nil
}

func (h Handler) UpdateCandidateHandler(ctx context.Context, electionID, candidateID string, req httptransport.UpdateCandidateRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.Candidates.UpdateCandidate(ctx, commands.UpdateCandidateCommand{
		CandidateID: candidateID,
		ElectionID:  electionID,
		Name:        req.Name,
		Position:    req.Position,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return toCandidateResponse(candidate), nil
}

func (h Handler) ActivateCandidateHandler(ctx context.Context, electionID, candidateID string) (httptransport.CandidateResponse, error) {
	candidate, err := h.Candidates.ActivateCandidate(ctx, candidateID, electionID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return toCandidateResponse(candidate), nil
}

func (h Handler) DeactivateCandidateHandler(ctx context.Context, electionID, candidateID string) (httptransport.CandidateResponse, error) {
	candidate, err := h.Candidates.DeactivateCandidate(ctx, candidateID, electionID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return toCandidateResponse(candidate), nil
}

func (h Handler) ListCandidatesHandler(ctx context.Context, electionID string, activeOnly bool) (httptransport.CandidateListResponse, error) {
	candidates, err := h.Queries.ListCandidates(ctx, electionID, activeOnly)
	if err != nil {
		return httptransport.CandidateListResponse{}, err
	}
	items := make([]httptransport.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, toCandidateResponse(candidate))
	}
	return httptransport.CandidateListResponse{Items: items}, nil
}

func toElectionResponse(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ElectionID:       election.ID,
		OrganizationID:   election.OrganizationID,
		Title:            election.Title,
		Description:      election.Description,
		Status:           string(election.Status),
		StartTime:        election.StartTime,
		EndTime:          election.EndTime,
		TotalVoters:      election.TotalVoters,
		VoterTurnout:     election.VoterTurnout,
		MaxVotesPerVoter: election.MaxVotesPerVoter,
		AllowWriteIn:     election.AllowWriteIn,
		ResultsPublished: election.ResultsPublished,
		CreatedAt:        election.CreatedAt,
		UpdatedAt:        election.UpdatedAt,
	}
}

func toCandidateResponse(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID: candidate.ID,
		ElectionID:  candidate.ElectionID,
		Name:        candidate.Name,
		Position:    candidate.Position,
		Active:      candidate.Active,
		WriteIn:     candidate.WriteIn,
		VoteCount:   candidate.VoteCount,
		CreatedAt:   candidate.CreatedAt,
		UpdatedAt:   candidate.UpdatedAt,
	}
}
