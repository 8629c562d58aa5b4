package queries

import (
	"context"
	"strings"

	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	"ballotcore/contexts/election-core/election-lifecycle/ports"
)

type ElectionQueryUseCase struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
}

func (uc ElectionQueryUseCase) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
}

func (uc ElectionQueryUseCase) ListByOrganization(ctx context.Context, organizationID string, status entities.ElectionStatus) ([]entities.Election, error) {
	return uc.Elections.ListElectionsByOrganization(ctx, strings.TrimSpace(organizationID), status)
}

func (uc ElectionQueryUseCase) ListCandidates(ctx context.Context, electionID string, activeOnly bool) ([]entities.Candidate, error) {
	if _, err := uc.Elections.GetElection(ctx, strings.TrimSpace(electionID)); err != nil {
		return nil, err
	}
	return uc.Candidates.ListCandidatesByElection(ctx, strings.TrimSpace(electionID), activeOnly)
}
