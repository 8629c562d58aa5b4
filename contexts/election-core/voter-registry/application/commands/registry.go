package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/election-core/voter-registry/application"
	"ballotcore/contexts/election-core/voter-registry/domain/entities"
	domainerrors "ballotcore/contexts/election-core/voter-registry/domain/errors"
	"ballotcore/contexts/election-core/voter-registry/ports"
	"ballotcore/internal/shared/record"
)

type EnrollCommand struct {
	OrganizationID string
	Identifiers    entities.Identifiers
	FullName       string
}

type UpdateEntryCommand struct {
	EntryID     string
	Identifiers entities.Identifiers
	FullName    string
}

// RegistryUseCase owns enrollment and the per-voter lockout and used-state
// accounting consulted by the verification and voting flows.
type RegistryUseCase struct {
	Entries ports.EntryRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc RegistryUseCase) Enroll(ctx context.Context, cmd EnrollCommand) (entities.VoterRegistryEntry, error) {
	logger := application.ResolveLogger(uc.Logger)
	organizationID := strings.TrimSpace(cmd.OrganizationID)
	if organizationID == "" {
		return entities.VoterRegistryEntry{}, domainerrors.ErrInvalidEntryInput
	}
	identifiers := cmd.Identifiers.Normalized()
	if identifiers.Empty() {
		return entities.VoterRegistryEntry{}, domainerrors.ErrNoIdentifier
	}
	if err := uc.checkDuplicates(ctx, organizationID, identifiers, ""); err != nil {
		return entities.VoterRegistryEntry{}, err
	}

	entryID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	entry := entities.VoterRegistryEntry{
		Record:         record.New(entryID, uc.now()),
		OrganizationID: organizationID,
		MatricNumber:   identifiers.MatricNumber,
		Email:          identifiers.Email,
		Phone:          identifiers.Phone,
		FullName:       strings.TrimSpace(cmd.FullName),
	}
	if err := uc.Entries.SaveEntry(ctx, entry); err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	logger.Info("voter enrolled",
		"event", "registry_voter_enrolled",
		"module", "election-core/voter-registry",
		"layer", "application",
		"entry_id", entry.ID,
		"organization_id", entry.OrganizationID,
	)
	return entry, nil
}

// UpdateEntry is an admin correction of identifiers. Used entries are frozen
// so the ledger's voter linkage stays intact.
func (uc RegistryUseCase) UpdateEntry(ctx context.Context, cmd UpdateEntryCommand) (entities.VoterRegistryEntry, error) {
	entry, err := uc.Entries.GetEntry(ctx, strings.TrimSpace(cmd.EntryID))
	if err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	if entry.Used {
		return entities.VoterRegistryEntry{}, domainerrors.ErrEntryAlreadyUsed
	}
	identifiers := cmd.Identifiers.Normalized()
	if identifiers.Empty() {
		return entities.VoterRegistryEntry{}, domainerrors.ErrNoIdentifier
	}
	if err := uc.checkDuplicates(ctx, entry.OrganizationID, identifiers, entry.ID); err != nil {
		return entities.VoterRegistryEntry{}, err
	}

	entry.MatricNumber = identifiers.MatricNumber
	entry.Email = identifiers.Email
	entry.Phone = identifiers.Phone
	if strings.TrimSpace(cmd.FullName) != "" {
		entry.FullName = strings.TrimSpace(cmd.FullName)
	}
	entry.Touch(uc.now())
	if err := uc.Entries.UpdateEntry(ctx, entry); err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	return entry, nil
}

func (uc RegistryUseCase) RemoveEntry(ctx context.Context, entryID string) error {
	logger := application.ResolveLogger(uc.Logger)
	entry, err := uc.Entries.GetEntry(ctx, strings.TrimSpace(entryID))
	if err != nil {
		return err
	}
	if entry.Used {
		return domainerrors.ErrEntryAlreadyUsed
	}
	if err := uc.Entries.DeleteEntry(ctx, entry.ID); err != nil {
		return err
	}
	logger.Info("voter removed",
		"event", "registry_voter_removed",
		"module", "election-core/voter-registry",
		"layer", "application",
		"entry_id", entry.ID,
		"organization_id", entry.OrganizationID,
	)
	return nil
}

// RecordVerificationAttempt increments the lockout counter unconditionally,
// on success and failure alike.
func (uc RegistryUseCase) RecordVerificationAttempt(ctx context.Context, entryID string) (entities.VoterRegistryEntry, error) {
	entry, err := uc.Entries.GetEntry(ctx, strings.TrimSpace(entryID))
	if err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	now := uc.now()
	entry.VerificationAttempts++
	entry.LastVerificationAttempt = &now
	entry.Touch(now)
	if err := uc.Entries.UpdateEntry(ctx, entry); err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	return entry, nil
}

func (uc RegistryUseCase) ResetVerificationAttempts(ctx context.Context, entryID string) (entities.VoterRegistryEntry, error) {
	entry, err := uc.Entries.GetEntry(ctx, strings.TrimSpace(entryID))
	if err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	entry.VerificationAttempts = 0
	entry.LastVerificationAttempt = nil
	entry.Touch(uc.now())
	if err := uc.Entries.UpdateEntry(ctx, entry); err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	return entry, nil
}

// MarkVoted flips the used flag through a conditional update, independent of
// the vote table's uniqueness constraint.
func (uc RegistryUseCase) MarkVoted(ctx context.Context, entryID string) (entities.VoterRegistryEntry, error) {
	logger := application.ResolveLogger(uc.Logger)
	marked, err := uc.Entries.MarkUsed(ctx, strings.TrimSpace(entryID), uc.now())
	if err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	if !marked {
		return entities.VoterRegistryEntry{}, domainerrors.ErrEntryAlreadyUsed
	}
	entry, err := uc.Entries.GetEntry(ctx, strings.TrimSpace(entryID))
	if err != nil {
		return entities.VoterRegistryEntry{}, err
	}
	logger.Info("voter marked as voted",
		"event", "registry_voter_marked_voted",
		"module", "election-core/voter-registry",
		"layer", "application",
		"entry_id", entry.ID,
		"organization_id", entry.OrganizationID,
	)
	return entry, nil
}

func (uc RegistryUseCase) checkDuplicates(ctx context.Context, organizationID string, identifiers entities.Identifiers, excludeEntryID string) error {
	checks := []struct {
		field entities.IdentifierField
		value string
		err   error
	}{
		{entities.IdentifierMatricNumber, identifiers.MatricNumber, domainerrors.ErrDuplicateMatricNumber},
		{entities.IdentifierEmail, identifiers.Email, domainerrors.ErrDuplicateEmail},
		{entities.IdentifierPhone, identifiers.Phone, domainerrors.ErrDuplicatePhone},
	}
	for _, check := range checks {
		if check.value == "" {
			continue
		}
		exists, err := uc.Entries.IdentifierExists(ctx, organizationID, check.field, check.value, excludeEntryID)
		if err != nil {
			return err
		}
		if exists {
			return check.err
		}
	}
	return nil
}

func (uc RegistryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
