package identitychallenge_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	identitychallenge "ballotcore/contexts/election-core/identity-challenge"
	"ballotcore/contexts/election-core/identity-challenge/application/commands"
	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	domainerrors "ballotcore/contexts/election-core/identity-challenge/domain/errors"
	"ballotcore/contexts/election-core/identity-challenge/ports"
	httptransport "ballotcore/contexts/election-core/identity-challenge/transport/http"
	"ballotcore/internal/shared/record"
)

func newModuleWithActivePolicy(t *testing.T, channel string) identitychallenge.Module {
	t.Helper()
	module := identitychallenge.NewInMemoryModule(nil, nil)
	policy, err := module.Handler.CreatePolicyHandler(context.Background(), httptransport.CreatePolicyRequest{
		OrganizationID:   "org-1",
		Name:             "Default Policy",
		IdentifierFields: []string{"email"},
		OTPChannel:       channel,
	})
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	if _, err := module.Handler.ActivatePolicyHandler(context.Background(), policy.PolicyID); err != nil {
		t.Fatalf("activate policy failed: %v", err)
	}
	return module
}

func TestPolicyDefaultsAndSingleActive(t *testing.T) {
	module := identitychallenge.NewInMemoryModule(nil, nil)

	first, err := module.Handler.CreatePolicyHandler(context.Background(), httptransport.CreatePolicyRequest{
		OrganizationID:   "org-1",
		Name:             "Policy A",
		IdentifierFields: []string{"email", "phone"},
		OTPChannel:       "EMAIL",
	})
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	if first.OTPExpiryMinutes != entities.DefaultOTPExpiryMinutes {
		t.Fatalf("expected default expiry %d, got %d", entities.DefaultOTPExpiryMinutes, first.OTPExpiryMinutes)
	}
	if first.MaxOTPAttempts != entities.DefaultMaxOTPAttempts {
		t.Fatalf("expected default attempts %d, got %d", entities.DefaultMaxOTPAttempts, first.MaxOTPAttempts)
	}
	if first.Active {
		t.Fatalf("expected new policy to start inactive")
	}

	second, err := module.Handler.CreatePolicyHandler(context.Background(), httptransport.CreatePolicyRequest{
		OrganizationID:   "org-1",
		Name:             "Policy B",
		IdentifierFields: []string{"matric_number"},
		OTPChannel:       "SMS",
	})
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	if _, err := module.Handler.ActivatePolicyHandler(context.Background(), first.PolicyID); err != nil {
		t.Fatalf("activate first failed: %v", err)
	}
	if _, err := module.Handler.ActivatePolicyHandler(context.Background(), second.PolicyID); err != nil {
		t.Fatalf("activate second failed: %v", err)
	}

	reloaded, err := module.Handler.GetPolicyHandler(context.Background(), first.PolicyID)
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if reloaded.Active {
		t.Fatalf("expected first policy to be deactivated by second activation")
	}
	active, err := module.Handler.GetPolicyHandler(context.Background(), second.PolicyID)
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if !active.Active {
		t.Fatalf("expected second policy active")
	}
}

func TestLockedPolicyIsImmutable(t *testing.T) {
	module := identitychallenge.NewInMemoryModule(nil, nil)

	policy, err := module.Handler.CreatePolicyHandler(context.Background(), httptransport.CreatePolicyRequest{
		OrganizationID:   "org-1",
		Name:             "Lockable",
		IdentifierFields: []string{"email"},
		OTPChannel:       "EMAIL",
	})
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	if _, err := module.Handler.LockPolicyHandler(context.Background(), policy.PolicyID); err != nil {
		t.Fatalf("lock policy failed: %v", err)
	}

	_, err = module.Handler.UpdatePolicyHandler(context.Background(), policy.PolicyID, httptransport.UpdatePolicyRequest{
		Name:             "Edited",
		IdentifierFields: []string{"email"},
		OTPChannel:       "SMS",
	})
	if !errors.Is(err, domainerrors.ErrPolicyLocked) {
		t.Fatalf("expected locked policy error, got %v", err)
	}
}

func TestGenerateInvalidatesPriorChallenge(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")

	if _, err := module.Challenges.Generate(context.Background(), commands.GenerateCommand{
		OrganizationID: "org-1",
		Identifier:     "voter@x.com",
		Purpose:        entities.PurposeVoterVerification,
	}); err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	if _, err := module.Challenges.Generate(context.Background(), commands.GenerateCommand{
		OrganizationID: "org-1",
		Identifier:     "voter@x.com",
		Purpose:        entities.PurposeVoterVerification,
	}); err != nil {
		t.Fatalf("second generate failed: %v", err)
	}

	deliveries := module.Store.Deliveries()
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
	firstCode, secondCode := deliveries[0].Message, deliveries[1].Message

	// The first code is dead after the second generate. Codes can collide, so
	// only assert the stale path when they differ.
	if firstCode != secondCode {
		_, err := module.Challenges.Verify(context.Background(), "voter@x.com", firstCode, entities.PurposeVoterVerification)
		if !errors.Is(err, domainerrors.ErrCodeMismatch) {
			t.Fatalf("expected code mismatch for stale code, got %v", err)
		}
	}

	if _, err := module.Challenges.Verify(context.Background(), "voter@x.com", secondCode, entities.PurposeVoterVerification); err != nil {
		t.Fatalf("expected fresh code to verify, got %v", err)
	}
}

func TestVerifyLocksAfterMaxAttempts(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")

	challenge, err := module.Challenges.Generate(context.Background(), commands.GenerateCommand{
		OrganizationID: "org-1",
		Identifier:     "locked@x.com",
		Purpose:        entities.PurposeVoterVerification,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	wrong := "000000"
	if wrong == challenge.Code {
		wrong = "111111"
	}
	for i := 0; i < challenge.MaxAttempts; i++ {
		if _, err := module.Challenges.Verify(context.Background(), "locked@x.com", wrong, entities.PurposeVoterVerification); !errors.Is(err, domainerrors.ErrCodeMismatch) {
			t.Fatalf("attempt %d: expected mismatch, got %v", i+1, err)
		}
	}

	// The correct code no longer helps once the counter passed the ceiling.
	if _, err := module.Challenges.Verify(context.Background(), "locked@x.com", challenge.Code, entities.PurposeVoterVerification); !errors.Is(err, domainerrors.ErrChallengeLocked) {
		t.Fatalf("expected locked challenge, got %v", err)
	}
}

func TestVerifySucceedsOnlyOnce(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")

	challenge, err := module.Challenges.Generate(context.Background(), commands.GenerateCommand{
		OrganizationID: "org-1",
		Identifier:     "once@x.com",
		Purpose:        entities.PurposeVoterVerification,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	verified, err := module.Challenges.Verify(context.Background(), "once@x.com", challenge.Code, entities.PurposeVoterVerification)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !verified.Used || verified.UsedAt == nil {
		t.Fatalf("expected used challenge with used_at")
	}

	if _, err := module.Challenges.Verify(context.Background(), "once@x.com", challenge.Code, entities.PurposeVoterVerification); !errors.Is(err, domainerrors.ErrChallengeUsed) {
		t.Fatalf("expected used-challenge error, got %v", err)
	}
}

func TestConcurrentVerifyAdmitsOneSuccess(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")

	challenge, err := module.Challenges.Generate(context.Background(), commands.GenerateCommand{
		OrganizationID: "org-1",
		Identifier:     "race@x.com",
		Purpose:        entities.PurposeVoterVerification,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	const verifiers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < verifiers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Challenges.Verify(context.Background(), "race@x.com", challenge.Code, entities.PurposeVoterVerification)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domainerrors.ErrChallengeUsed), errors.Is(err, domainerrors.ErrChallengeLocked):
			default:
				t.Errorf("unexpected verify error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful verify, got %d", successes)
	}
}

func TestVerifyExpiredChallenge(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")
	now := time.Now().UTC()

	stale := entities.OTPChallenge{
		Record:         record.New("challenge-stale", now.Add(-time.Hour)),
		Identifier:     "stale@x.com",
		Code:           "123456",
		Channel:        entities.ChannelEmail,
		Purpose:        entities.PurposeVoterVerification,
		MaxAttempts:    entities.DefaultMaxOTPAttempts,
		ExpiresAt:      now.Add(-30 * time.Minute),
		OrganizationID: "org-1",
	}
	if err := module.Store.SaveChallenge(context.Background(), stale); err != nil {
		t.Fatalf("seed challenge failed: %v", err)
	}

	if _, err := module.Challenges.Verify(context.Background(), "stale@x.com", "123456", entities.PurposeVoterVerification); !errors.Is(err, domainerrors.ErrChallengeExpired) {
		t.Fatalf("expected expired challenge, got %v", err)
	}
}

func TestResendReturnsLiveChallengeUntouched(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")

	challenge, err := module.Challenges.Generate(context.Background(), commands.GenerateCommand{
		OrganizationID: "org-1",
		Identifier:     "resend@x.com",
		Purpose:        entities.PurposeVoterVerification,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	wrong := "000000"
	if wrong == challenge.Code {
		wrong = "111111"
	}
	if _, err := module.Challenges.Verify(context.Background(), "resend@x.com", wrong, entities.PurposeVoterVerification); !errors.Is(err, domainerrors.ErrCodeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	resent, err := module.Challenges.Resend(context.Background(), commands.ResendCommand{
		OrganizationID: "org-1",
		Identifier:     "resend@x.com",
		Purpose:        entities.PurposeVoterVerification,
	})
	if err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if resent.ID != challenge.ID {
		t.Fatalf("expected live challenge to be returned, got a new one")
	}
	// Attempt counter survives resend; no laundering.
	if resent.Attempts != 1 {
		t.Fatalf("expected attempts preserved at 1, got %d", resent.Attempts)
	}
}

func TestResendRegeneratesDeadChallenge(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")
	now := time.Now().UTC()

	dead := entities.OTPChallenge{
		Record:         record.New("challenge-dead", now.Add(-time.Hour)),
		Identifier:     "dead@x.com",
		Code:           "123456",
		Channel:        entities.ChannelSMS,
		Purpose:        entities.PurposeVoterVerification,
		MaxAttempts:    entities.DefaultMaxOTPAttempts,
		ExpiresAt:      now.Add(-30 * time.Minute),
		OrganizationID: "org-1",
	}
	if err := module.Store.SaveChallenge(context.Background(), dead); err != nil {
		t.Fatalf("seed challenge failed: %v", err)
	}

	resent, err := module.Challenges.Resend(context.Background(), commands.ResendCommand{
		Identifier: "dead@x.com",
		Purpose:    entities.PurposeVoterVerification,
	})
	if err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if resent.ID == dead.ID {
		t.Fatalf("expected a fresh challenge")
	}
	if resent.Channel != entities.ChannelSMS {
		t.Fatalf("expected prior channel reused, got %s", resent.Channel)
	}
}

func TestVerifyVoterFlowAndConfirm(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")
	module.Store.SetVoter(ports.VoterProjection{
		VoterRegistryID: "entry-1",
		OrganizationID:  "org-1",
		Email:           "flow@x.com",
	})

	_, err := module.Handler.VerifyVoterHandler(context.Background(), httptransport.VerifyVoterRequest{
		OrganizationID: "org-1",
		Identifiers:    map[string]string{"phone": "+234800"},
	})
	if !errors.Is(err, domainerrors.ErrMissingIdentifier) {
		t.Fatalf("expected missing identifier error, got %v", err)
	}

	_, err = module.Handler.VerifyVoterHandler(context.Background(), httptransport.VerifyVoterRequest{
		OrganizationID: "org-1",
		Identifiers:    map[string]string{"email": "unknown@x.com"},
	})
	if !errors.Is(err, domainerrors.ErrVoterNotFound) {
		t.Fatalf("expected voter not found, got %v", err)
	}

	pending, err := module.Handler.VerifyVoterHandler(context.Background(), httptransport.VerifyVoterRequest{
		OrganizationID: "org-1",
		Identifiers:    map[string]string{"email": "flow@x.com"},
	})
	if err != nil {
		t.Fatalf("verify voter failed: %v", err)
	}
	if !pending.OTPRequired || pending.VoterRegistryID != "entry-1" {
		t.Fatalf("unexpected pending handle: %+v", pending)
	}
	if module.Store.VoterAttempts("entry-1") != 1 {
		t.Fatalf("expected one recorded verification attempt")
	}

	deliveries := module.Store.Deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("expected one delivery, got %d", len(deliveries))
	}

	verified, err := module.Handler.ConfirmOTPHandler(context.Background(), httptransport.ConfirmOTPRequest{
		Identifier: pending.Identifier,
		Code:       deliveries[0].Message,
	})
	if err != nil {
		t.Fatalf("confirm otp failed: %v", err)
	}
	if verified.VoterRegistryID != "entry-1" || verified.VerificationMethod != "otp" {
		t.Fatalf("unexpected verified handle: %+v", verified)
	}
	if module.Store.VoterAttempts("entry-1") != 0 {
		t.Fatalf("expected attempts reset on confirmed verification")
	}
}

func TestVerifyVoterWithoutOTPPolicy(t *testing.T) {
	module := newModuleWithActivePolicy(t, "NONE")
	module.Store.SetVoter(ports.VoterProjection{
		VoterRegistryID: "entry-2",
		OrganizationID:  "org-1",
		Email:           "direct@x.com",
	})

	pending, err := module.Handler.VerifyVoterHandler(context.Background(), httptransport.VerifyVoterRequest{
		OrganizationID: "org-1",
		Identifiers:    map[string]string{"email": "direct@x.com"},
	})
	if err != nil {
		t.Fatalf("verify voter failed: %v", err)
	}
	if pending.OTPRequired {
		t.Fatalf("expected no OTP requirement under NONE channel")
	}
	if len(module.Store.Deliveries()) != 0 {
		t.Fatalf("expected no deliveries under NONE channel")
	}
}

func TestCleanupDeletesOnlyExpiredBeyondRetention(t *testing.T) {
	module := newModuleWithActivePolicy(t, "EMAIL")
	now := time.Now().UTC()

	old := entities.OTPChallenge{
		Record:         record.New("challenge-old", now.Add(-48*time.Hour)),
		Identifier:     "old@x.com",
		Code:           "123456",
		Channel:        entities.ChannelEmail,
		Purpose:        entities.PurposeVoterVerification,
		MaxAttempts:    entities.DefaultMaxOTPAttempts,
		ExpiresAt:      now.Add(-30 * time.Hour),
		OrganizationID: "org-1",
	}
	recent := entities.OTPChallenge{
		Record:         record.New("challenge-recent", now.Add(-time.Hour)),
		Identifier:     "recent@x.com",
		Code:           "654321",
		Channel:        entities.ChannelEmail,
		Purpose:        entities.PurposeVoterVerification,
		MaxAttempts:    entities.DefaultMaxOTPAttempts,
		ExpiresAt:      now.Add(-30 * time.Minute),
		OrganizationID: "org-1",
	}
	for _, challenge := range []entities.OTPChallenge{old, recent} {
		if err := module.Store.SaveChallenge(context.Background(), challenge); err != nil {
			t.Fatalf("seed challenge failed: %v", err)
		}
	}

	if err := module.Cleaner.RunOnce(context.Background()); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if _, found, _ := module.Store.LatestChallenge(context.Background(), "old@x.com", entities.PurposeVoterVerification); found {
		t.Fatalf("expected old challenge deleted")
	}
	// Expired but inside retention: still present.
	if _, found, _ := module.Store.LatestChallenge(context.Background(), "recent@x.com", entities.PurposeVoterVerification); !found {
		t.Fatalf("expected recent challenge retained")
	}
}
