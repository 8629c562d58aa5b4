package queries

import (
	"context"
	"strings"

	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	domainerrors "ballotcore/contexts/election-core/identity-challenge/domain/errors"
	"ballotcore/contexts/election-core/identity-challenge/ports"
)

type PolicyQueryUseCase struct {
	Policies ports.PolicyRepository
}

func (uc PolicyQueryUseCase) GetPolicy(ctx context.Context, policyID string) (entities.IdentityPolicy, error) {
	return uc.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
}

func (uc PolicyQueryUseCase) ActivePolicy(ctx context.Context, organizationID string) (entities.IdentityPolicy, error) {
	policy, found, err := uc.Policies.GetActivePolicy(ctx, strings.TrimSpace(organizationID))
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	if !found {
		return entities.IdentityPolicy{}, domainerrors.ErrNoActivePolicy
	}
	return policy, nil
}

func (uc PolicyQueryUseCase) ListByOrganization(ctx context.Context, organizationID string) ([]entities.IdentityPolicy, error) {
	return uc.Policies.ListPoliciesByOrganization(ctx, strings.TrimSpace(organizationID))
}
