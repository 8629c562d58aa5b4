package voterregistry_test

import (
	"context"
	"errors"
	"testing"

	voterregistry "ballotcore/contexts/election-core/voter-registry"
	"ballotcore/contexts/election-core/voter-registry/domain/entities"
	domainerrors "ballotcore/contexts/election-core/voter-registry/domain/errors"
	httptransport "ballotcore/contexts/election-core/voter-registry/transport/http"
)

func TestEnrollRejectsDuplicateIdentifierNamingField(t *testing.T) {
	module := voterregistry.NewInMemoryModule(nil, nil)

	first, err := module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
		Email:          "a@x.com",
		FullName:       "First Voter",
	})
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if first.Used {
		t.Fatalf("expected fresh entry to be unused")
	}

	_, err = module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
		Email:          "a@x.com",
		FullName:       "Second Voter",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email conflict, got %v", err)
	}

	// Same identifier in a different organization is fine.
	if _, err := module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-2",
		Email:          "a@x.com",
	}); err != nil {
		t.Fatalf("cross-organization enroll failed: %v", err)
	}

	_, err = module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
	})
	if !errors.Is(err, domainerrors.ErrNoIdentifier) {
		t.Fatalf("expected no-identifier error, got %v", err)
	}
}

func TestEligibilityChecksUsedAndLockout(t *testing.T) {
	module := voterregistry.NewInMemoryModule(nil, nil)

	enrolled, err := module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
		MatricNumber:   "MAT-001",
		FullName:       "Eligible Voter",
	})
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	eligible, err := module.Handler.EligibilityHandler(context.Background(), httptransport.EligibilityRequest{
		OrganizationID: "org-1",
		MatricNumber:   "MAT-001",
	})
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if eligible.EntryID != enrolled.EntryID {
		t.Fatalf("expected entry %s, got %s", enrolled.EntryID, eligible.EntryID)
	}

	for i := 0; i < entities.LockoutThreshold; i++ {
		if _, err := module.Registry.RecordVerificationAttempt(context.Background(), enrolled.EntryID); err != nil {
			t.Fatalf("record attempt failed: %v", err)
		}
	}
	_, err = module.Handler.EligibilityHandler(context.Background(), httptransport.EligibilityRequest{
		OrganizationID: "org-1",
		MatricNumber:   "MAT-001",
	})
	if !errors.Is(err, domainerrors.ErrVoterLocked) {
		t.Fatalf("expected lockout error, got %v", err)
	}

	if _, err := module.Handler.ResetVerificationAttemptsHandler(context.Background(), enrolled.EntryID); err != nil {
		t.Fatalf("reset attempts failed: %v", err)
	}
	if _, err := module.Handler.EligibilityHandler(context.Background(), httptransport.EligibilityRequest{
		OrganizationID: "org-1",
		MatricNumber:   "MAT-001",
	}); err != nil {
		t.Fatalf("eligibility after reset failed: %v", err)
	}
}

func TestMarkVotedIsOneShot(t *testing.T) {
	module := voterregistry.NewInMemoryModule(nil, nil)

	enrolled, err := module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
		Phone:          "+2348000000001",
	})
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	marked, err := module.Registry.MarkVoted(context.Background(), enrolled.EntryID)
	if err != nil {
		t.Fatalf("mark voted failed: %v", err)
	}
	if !marked.Used || marked.VotedAt == nil {
		t.Fatalf("expected used entry with voted_at set")
	}

	if _, err := module.Registry.MarkVoted(context.Background(), enrolled.EntryID); !errors.Is(err, domainerrors.ErrEntryAlreadyUsed) {
		t.Fatalf("expected already-used conflict, got %v", err)
	}

	_, err = module.Handler.EligibilityHandler(context.Background(), httptransport.EligibilityRequest{
		OrganizationID: "org-1",
		Phone:          "+2348000000001",
	})
	if !errors.Is(err, domainerrors.ErrEntryAlreadyUsed) {
		t.Fatalf("expected used entry to be ineligible, got %v", err)
	}
}

func TestUsedEntriesAreFrozen(t *testing.T) {
	module := voterregistry.NewInMemoryModule(nil, nil)

	enrolled, err := module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
		Email:          "frozen@x.com",
	})
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if _, err := module.Registry.MarkVoted(context.Background(), enrolled.EntryID); err != nil {
		t.Fatalf("mark voted failed: %v", err)
	}

	_, err = module.Handler.UpdateEntryHandler(context.Background(), enrolled.EntryID, httptransport.UpdateEntryRequest{
		Email: "new@x.com",
	})
	if !errors.Is(err, domainerrors.ErrEntryAlreadyUsed) {
		t.Fatalf("expected update of used entry to fail, got %v", err)
	}
	if err := module.Handler.RemoveEntryHandler(context.Background(), enrolled.EntryID); !errors.Is(err, domainerrors.ErrEntryAlreadyUsed) {
		t.Fatalf("expected removal of used entry to fail, got %v", err)
	}
}

func TestUpdateEntryChecksDuplicatesAgainstOthers(t *testing.T) {
	module := voterregistry.NewInMemoryModule(nil, nil)

	if _, err := module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
		Email:          "taken@x.com",
	}); err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	second, err := module.Handler.EnrollHandler(context.Background(), httptransport.EnrollRequest{
		OrganizationID: "org-1",
		Email:          "mine@x.com",
	})
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}

	_, err = module.Handler.UpdateEntryHandler(context.Background(), second.EntryID, httptransport.UpdateEntryRequest{
		Email: "taken@x.com",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email conflict, got %v", err)
	}

	// Keeping your own identifier is not a conflict.
	updated, err := module.Handler.UpdateEntryHandler(context.Background(), second.EntryID, httptransport.UpdateEntryRequest{
		Email:    "mine@x.com",
		FullName: "Renamed Voter",
	})
	if err != nil {
		t.Fatalf("self-update failed: %v", err)
	}
	if updated.FullName != "Renamed Voter" {
		t.Fatalf("expected updated name, got %s", updated.FullName)
	}
}
