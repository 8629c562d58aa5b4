package registrydirectory

import (
	"context"

	"ballotcore/contexts/election-core/identity-challenge/ports"
	registrycommands "ballotcore/contexts/election-core/voter-registry/application/commands"
	registryqueries "ballotcore/contexts/election-core/voter-registry/application/queries"
	registryentities "ballotcore/contexts/election-core/voter-registry/domain/entities"
)

// Directory adapts the voter-registry module's use cases to the identity
// module's VoterDirectory port.
type Directory struct {
	Registry registrycommands.RegistryUseCase
	Queries  registryqueries.RegistryQueryUseCase
}

func (d Directory) FindVoter(ctx context.Context, organizationID string, identifiers map[string]string) (ports.VoterProjection, bool, error) {
	entry, found, err := d.Queries.Lookup(ctx, organizationID, registryentities.Identifiers{
		MatricNumber: identifiers["matric_number"],
		Email:        identifiers["email"],
		Phone:        identifiers["phone"],
	})
	if err != nil || !found {
		return ports.VoterProjection{}, false, err
	}
	return ports.VoterProjection{
		VoterRegistryID: entry.ID,
		OrganizationID:  entry.OrganizationID,
		MatricNumber:    entry.MatricNumber,
		Email:           entry.Email,
		Phone:           entry.Phone,
		Used:            entry.Used,
		Locked:          entry.Locked(),
	}, true, nil
}

func (d Directory) RecordVerificationAttempt(ctx context.Context, voterRegistryID string) error {
	_, err := d.Registry.RecordVerificationAttempt(ctx, voterRegistryID)
	return err
}

func (d Directory) ResetVerificationAttempts(ctx context.Context, voterRegistryID string) error {
	_, err := d.Registry.ResetVerificationAttempts(ctx, voterRegistryID)
	return err
}

var _ ports.VoterDirectory = Directory{}
