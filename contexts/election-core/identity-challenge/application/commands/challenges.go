package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "ballotcore/contexts/election-core/identity-challenge/application"
	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	domainerrors "ballotcore/contexts/election-core/identity-challenge/domain/errors"
	"ballotcore/contexts/election-core/identity-challenge/ports"
	"ballotcore/internal/shared/record"
)

type GenerateCommand struct {
	OrganizationID  string
	Identifier      string
	Channel         entities.OTPChannel
	Purpose         string
	VoterRegistryID string
}

type ResendCommand struct {
	OrganizationID string
	Identifier     string
	Purpose        string
}

type VerifyVoterCommand struct {
	OrganizationID string
	Identifiers    map[string]string
}

// PendingVerification is the handle returned by the verification flow before
// the code is confirmed.
type PendingVerification struct {
	VoterRegistryID string
	Identifier      string
	OTPRequired     bool
	Channel         entities.OTPChannel
}

// VerifiedVoter is the handle castVote trusts: proof of a completed identity
// confirmation for one registry entry.
type VerifiedVoter struct {
	VoterRegistryID    string
	OrganizationID     string
	VerificationMethod string
}

// ChallengeUseCase owns the OTP engine and the two-step voter verification
// flow built on it.
type ChallengeUseCase struct {
	Challenges ports.ChallengeRepository
	Policies   ports.PolicyRepository
	Directory  ports.VoterDirectory
	Notifier   ports.Notifier
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Generate invalidates any live challenge for (identifier, purpose), persists
// a fresh one, and only then dispatches delivery. Delivery failure is logged
// and never rolls the challenge back: verification must remain possible when
// the code is observed out-of-band.
func (uc ChallengeUseCase) Generate(ctx context.Context, cmd GenerateCommand) (entities.OTPChallenge, error) {
	logger := application.ResolveLogger(uc.Logger)
	identifier := strings.TrimSpace(cmd.Identifier)
	purpose := strings.TrimSpace(cmd.Purpose)
	if identifier == "" || purpose == "" {
		return entities.OTPChallenge{}, domainerrors.ErrInvalidChallengeInput
	}
	policy, found, err := uc.Policies.GetActivePolicy(ctx, strings.TrimSpace(cmd.OrganizationID))
	if err != nil {
		return entities.OTPChallenge{}, err
	}
	if !found {
		return entities.OTPChallenge{}, domainerrors.ErrNoActivePolicy
	}

	now := uc.now()
	if err := uc.Challenges.InvalidateLive(ctx, identifier, purpose, now); err != nil {
		return entities.OTPChallenge{}, err
	}

	code, err := randomCode(policy.CodeLength, entities.DefaultCodeAlphabet)
	if err != nil {
		return entities.OTPChallenge{}, err
	}
	challengeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.OTPChallenge{}, err
	}
	channel := cmd.Channel
	if channel == "" {
		channel = policy.OTPChannel
	}
	challenge := entities.OTPChallenge{
		Record:          record.New(challengeID, now),
		Identifier:      identifier,
		Code:            code,
		Channel:         channel,
		Purpose:         purpose,
		MaxAttempts:     policy.AttemptCeiling(),
		ExpiresAt:       now.Add(policy.Expiry()),
		OrganizationID:  strings.TrimSpace(cmd.OrganizationID),
		VoterRegistryID: strings.TrimSpace(cmd.VoterRegistryID),
	}
	if err := uc.Challenges.SaveChallenge(ctx, challenge); err != nil {
		return entities.OTPChallenge{}, err
	}
	logger.Info("challenge generated",
		"event", "identity_challenge_generated",
		"module", "election-core/identity-challenge",
		"layer", "application",
		"challenge_id", challenge.ID,
		"purpose", challenge.Purpose,
		"channel", string(challenge.Channel),
	)

	uc.dispatch(ctx, challenge)
	return challenge, nil
}

// Verify increments the attempt counter unconditionally, persists it, and
// only then evaluates the outcome: locked, expired, used, mismatch, success.
// The increment and the success transition are both storage-guarded, so
// racing verifiers cannot share an attempt slot or a success.
func (uc ChallengeUseCase) Verify(ctx context.Context, identifier, code, purpose string) (entities.OTPChallenge, error) {
	logger := application.ResolveLogger(uc.Logger)
	challenge, found, err := uc.Challenges.LatestChallenge(ctx, strings.TrimSpace(identifier), strings.TrimSpace(purpose))
	if err != nil {
		return entities.OTPChallenge{}, err
	}
	if !found {
		return entities.OTPChallenge{}, domainerrors.ErrChallengeNotFound
	}

	now := uc.now()
	attempts, err := uc.Challenges.RecordAttempt(ctx, challenge.ID, now)
	if err != nil {
		return entities.OTPChallenge{}, err
	}
	challenge.Attempts = attempts
	challenge.Touch(now)

	switch {
	case challenge.LockedOut():
		logger.Warn("challenge locked",
			"event", "identity_challenge_locked",
			"module", "election-core/identity-challenge",
			"layer", "application",
			"challenge_id", challenge.ID,
			"attempts", challenge.Attempts,
		)
		return entities.OTPChallenge{}, domainerrors.ErrChallengeLocked
	case challenge.Expired(now):
		return entities.OTPChallenge{}, domainerrors.ErrChallengeExpired
	case challenge.Used:
		return entities.OTPChallenge{}, domainerrors.ErrChallengeUsed
	case challenge.Code != strings.TrimSpace(code):
		return entities.OTPChallenge{}, domainerrors.ErrCodeMismatch
	}

	if err := uc.Challenges.MarkChallengeUsed(ctx, challenge.ID, now); err != nil {
		return entities.OTPChallenge{}, err
	}
	challenge.Used = true
	usedAt := now
	challenge.UsedAt = &usedAt
	logger.Info("challenge verified",
		"event", "identity_challenge_verified",
		"module", "election-core/identity-challenge",
		"layer", "application",
		"challenge_id", challenge.ID,
	)
	return challenge, nil
}

// Resend returns a still-valid challenge untouched so attempt counters cannot
// be laundered; only a dead challenge triggers regeneration, reusing the
// prior channel.
func (uc ChallengeUseCase) Resend(ctx context.Context, cmd ResendCommand) (entities.OTPChallenge, error) {
	identifier := strings.TrimSpace(cmd.Identifier)
	purpose := strings.TrimSpace(cmd.Purpose)
	if identifier == "" || purpose == "" {
		return entities.OTPChallenge{}, domainerrors.ErrInvalidChallengeInput
	}
	prior, found, err := uc.Challenges.LatestChallenge(ctx, identifier, purpose)
	if err != nil {
		return entities.OTPChallenge{}, err
	}
	if found && prior.Live(uc.now()) {
		uc.dispatch(ctx, prior)
		return prior, nil
	}

	channel := entities.ChannelEmail
	voterRegistryID := ""
	organizationID := strings.TrimSpace(cmd.OrganizationID)
	if found {
		channel = prior.Channel
		voterRegistryID = prior.VoterRegistryID
		if organizationID == "" {
			organizationID = prior.OrganizationID
		}
	}
	return uc.Generate(ctx, GenerateCommand{
		OrganizationID:  organizationID,
		Identifier:      identifier,
		Channel:         channel,
		Purpose:         purpose,
		VoterRegistryID: voterRegistryID,
	})
}

// VerifyVoter starts the voting identity flow: resolve the active policy,
// check the required identifier fields, locate an eligible registry entry,
// record a verification attempt, and issue a challenge when the policy
// requires OTP.
func (uc ChallengeUseCase) VerifyVoter(ctx context.Context, cmd VerifyVoterCommand) (PendingVerification, error) {
	logger := application.ResolveLogger(uc.Logger)
	organizationID := strings.TrimSpace(cmd.OrganizationID)
	policy, found, err := uc.Policies.GetActivePolicy(ctx, organizationID)
	if err != nil {
		return PendingVerification{}, err
	}
	if !found {
		return PendingVerification{}, domainerrors.ErrNoActivePolicy
	}
	identifiers := normalizeIdentifierMap(cmd.Identifiers)
	for _, field := range policy.IdentifierFields {
		if identifiers[field] == "" {
			return PendingVerification{}, domainerrors.ErrMissingIdentifier
		}
	}

	voter, found, err := uc.Directory.FindVoter(ctx, organizationID, identifiers)
	if err != nil {
		return PendingVerification{}, err
	}
	if !found {
		return PendingVerification{}, domainerrors.ErrVoterNotFound
	}
	if voter.Used {
		return PendingVerification{}, domainerrors.ErrVoterAlreadyVoted
	}
	if voter.Locked {
		return PendingVerification{}, domainerrors.ErrVoterLocked
	}
	if err := uc.Directory.RecordVerificationAttempt(ctx, voter.VoterRegistryID); err != nil {
		return PendingVerification{}, err
	}

	identifier := deliveryIdentifier(policy.OTPChannel, voter, identifiers)
	pending := PendingVerification{
		VoterRegistryID: voter.VoterRegistryID,
		Identifier:      identifier,
		OTPRequired:     policy.RequiresOTP(),
		Channel:         policy.OTPChannel,
	}
	if !policy.RequiresOTP() {
		logger.Info("voter verified without otp",
			"event", "identity_voter_verified_no_otp",
			"module", "election-core/identity-challenge",
			"layer", "application",
			"voter_registry_id", voter.VoterRegistryID,
		)
		return pending, nil
	}

	if _, err := uc.Generate(ctx, GenerateCommand{
		OrganizationID:  organizationID,
		Identifier:      identifier,
		Channel:         policy.OTPChannel,
		Purpose:         entities.PurposeVoterVerification,
		VoterRegistryID: voter.VoterRegistryID,
	}); err != nil {
		return PendingVerification{}, err
	}
	return pending, nil
}

// ConfirmOTP finishes the flow: a successful verify resets the voter's
// lockout counter and yields the handle castVote trusts.
func (uc ChallengeUseCase) ConfirmOTP(ctx context.Context, identifier, code string) (VerifiedVoter, error) {
	challenge, err := uc.Verify(ctx, identifier, code, entities.PurposeVoterVerification)
	if err != nil {
		return VerifiedVoter{}, err
	}
	if challenge.VoterRegistryID != "" {
		if err := uc.Directory.ResetVerificationAttempts(ctx, challenge.VoterRegistryID); err != nil {
			return VerifiedVoter{}, err
		}
	}
	return VerifiedVoter{
		VoterRegistryID:    challenge.VoterRegistryID,
		OrganizationID:     challenge.OrganizationID,
		VerificationMethod: "otp",
	}, nil
}

func (uc ChallengeUseCase) dispatch(ctx context.Context, challenge entities.OTPChallenge) {
	if uc.Notifier == nil || challenge.Channel == entities.ChannelNone {
		return
	}
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.Notifier.Deliver(ctx, challenge.Identifier, challenge.Channel, challenge.Code); err != nil {
		logger.Error("challenge delivery failed",
			"event", "identity_challenge_delivery_failed",
			"module", "election-core/identity-challenge",
			"layer", "application",
			"challenge_id", challenge.ID,
			"channel", string(challenge.Channel),
			"error", err.Error(),
		)
	}
}

func (uc ChallengeUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func normalizeIdentifierMap(identifiers map[string]string) map[string]string {
	normalized := make(map[string]string, len(identifiers))
	for field, value := range identifiers {
		normalized[strings.ToLower(strings.TrimSpace(field))] = strings.TrimSpace(value)
	}
	return normalized
}

// deliveryIdentifier picks the address matching the policy channel, falling
// back to any supplied identifier.
func deliveryIdentifier(channel entities.OTPChannel, voter ports.VoterProjection, identifiers map[string]string) string {
	switch channel {
	case entities.ChannelEmail:
		if voter.Email != "" {
			return voter.Email
		}
		if identifiers["email"] != "" {
			return identifiers["email"]
		}
	case entities.ChannelSMS:
		if voter.Phone != "" {
			return voter.Phone
		}
		if identifiers["phone"] != "" {
			return identifiers["phone"]
		}
	}
	for _, field := range []string{"email", "phone", "matric_number"} {
		if identifiers[field] != "" {
			return identifiers[field]
		}
	}
	return voter.VoterRegistryID
}
