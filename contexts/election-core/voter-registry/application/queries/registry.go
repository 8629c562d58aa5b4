package queries

import (
	"context"
	"strings"

	"ballotcore/contexts/election-core/voter-registry/domain/entities"
	domainerrors "ballotcore/contexts/election-core/voter-registry/domain/errors"
	"ballotcore/contexts/election-core/voter-registry/ports"
)

type RegistryQueryUseCase struct {
	Entries ports.EntryRepository
}

func (uc RegistryQueryUseCase) GetEntry(ctx context.Context, entryID string) (entities.VoterRegistryEntry, error) {
	return uc.Entries.GetEntry(ctx, strings.TrimSpace(entryID))
}

func (uc RegistryQueryUseCase) ListByOrganization(ctx context.Context, organizationID string) ([]entities.VoterRegistryEntry, error) {
	return uc.Entries.ListEntriesByOrganization(ctx, strings.TrimSpace(organizationID))
}

// Lookup resolves an entry by identifiers without eligibility checks; callers
// that need raw used/lockout state (the verification flow) use this.
func (uc RegistryQueryUseCase) Lookup(ctx context.Context, organizationID string, identifiers entities.Identifiers) (entities.VoterRegistryEntry, bool, error) {
	if identifiers.Empty() {
		return entities.VoterRegistryEntry{}, false, domainerrors.ErrNoIdentifier
	}
	return uc.Entries.FindByIdentifiers(ctx, strings.TrimSpace(organizationID), identifiers.Normalized())
}

// Eligible resolves the entry matching the supplied identifiers and checks it
// is unused and below the lockout threshold. Fails closed on every branch.
func (uc RegistryQueryUseCase) Eligible(ctx context.Context, organizationID string, identifiers entities.Identifiers) (entities.VoterRegistryEntry, error) {
	if identifiers.Empty() {
		return entities.VoterRegistryEntry{}, domainerrors.ErrNoIdentifier
	}
	entry, found, err := uc.Entries.FindByIdentifiers(ctx, strings.TrimSpace(organizationID), identifiers.Normalized())
	if err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	if !found {
		return entities.VoterRegistryEntry{}, domainerrors.ErrEntryNotFound
	}
	if entry.Used {
		return entities.VoterRegistryEntry{}, domainerrors.ErrEntryAlreadyUsed
	}
	if entry.Locked() {
		return entities.VoterRegistryEntry{}, domainerrors.ErrVoterLocked
	}
	return entry, nil
}
