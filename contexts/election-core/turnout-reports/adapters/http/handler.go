package httpadapter

import (
	"context"
	"log/slog"

	"ballotcore/contexts/election-core/turnout-reports/application/queries"
	"ballotcore/contexts/election-core/turnout-reports/domain/entities"
	httptransport "ballotcore/contexts/election-core/turnout-reports/transport/http"
)

type Handler struct {
	Reports queries.ReportQueryUseCase
	Logger  *slog.Logger
}

func (h Handler) ElectionSummaryHandler(ctx context.Context, electionID string) (httptransport.ElectionSummaryResponse, error) {
	summary, err := h.Reports.ElectionSummary(ctx, electionID)
	if err != nil {
		return httptransport.ElectionSummaryResponse{}, err
	}
	candidates := make([]httptransport.CandidateTallyResponse, 0, len(summary.Candidates))
	for _, tally := range summary.Candidates {
		candidates = append(candidates, toTallyResponse(tally))
	}
	response := httptransport.ElectionSummaryResponse{
		ElectionID:       summary.ElectionID,
		OrganizationID:   summary.OrganizationID,
		Title:            summary.Title,
		Status:           summary.Status,
		TotalVotes:       summary.TotalVotes,
		TotalVoters:      summary.TotalVoters,
		TurnoutPct:       summary.TurnoutPct,
		Candidates:       candidates,
		ResultsPublished: summary.ResultsPublished,
	}
	if summary.LeadingCandidate != nil {
		leading := toTallyResponse(*summary.LeadingCandidate)
		response.LeadingCandidate = &leading
	}
	return response, nil
}

func (h Handler) RegistrySummaryHandler(ctx context.Context, organizationID string) (httptransport.RegistrySummaryResponse, error) {
	summary, err := h.Reports.RegistrySummary(ctx, organizationID)
	if err != nil {
		return httptransport.RegistrySummaryResponse{}, err
	}
	return httptransport.RegistrySummaryResponse{
		OrganizationID:  summary.OrganizationID,
		TotalVoters:     summary.TotalVoters,
		VotedCount:      summary.VotedCount,
		RemainingVoters: summary.RemainingVoters,
		TurnoutPct:      summary.TurnoutPct,
		LockedVoters:    summary.LockedVoters,
	}, nil
}

func toTallyResponse(tally entities.CandidateTally) httptransport.CandidateTallyResponse {
	return httptransport.CandidateTallyResponse{
		CandidateID: tally.CandidateID,
		Name:        tally.Name,
		Position:    tally.Position,
		Active:      tally.Active,
		WriteIn:     tally.WriteIn,
		VoteCount:   tally.VoteCount,
	}
}
