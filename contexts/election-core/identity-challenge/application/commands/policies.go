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

type CreatePolicyCommand struct {
	OrganizationID   string
	Name             string
	Description      string
	IdentifierFields []string
	OTPChannel       entities.OTPChannel
	OTPExpiryMinutes int
	MaxOTPAttempts   int
	CodeLength       int
}

type UpdatePolicyCommand struct {
	PolicyID         string
	Name             string
	Description      string
	IdentifierFields []string
	OTPChannel       entities.OTPChannel
	OTPExpiryMinutes int
	MaxOTPAttempts   int
	CodeLength       int
}

var allowedIdentifierFields = map[string]struct{}{
	"matric_number": {},
	"email":         {},
	"phone":         {},
}

// PolicyUseCase administers identity policies. Locked policies are immutable
// and can only be superseded by activating another policy.
type PolicyUseCase struct {
	Policies ports.PolicyRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc PolicyUseCase) CreatePolicy(ctx context.Context, cmd CreatePolicyCommand) (entities.IdentityPolicy, error) {
	logger := application.ResolveLogger(uc.Logger)
	organizationID := strings.TrimSpace(cmd.OrganizationID)
	if organizationID == "" || strings.TrimSpace(cmd.Name) == "" {
		return entities.IdentityPolicy{}, domainerrors.ErrInvalidPolicyInput
	}
	fields, err := normalizeIdentifierFields(cmd.IdentifierFields)
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	channel, err := normalizeChannel(cmd.OTPChannel)
	if err != nil {
		return entities.IdentityPolicy{}, err
	}

	policyID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	policy := entities.IdentityPolicy{
		Record:           record.New(policyID, uc.now()),
		OrganizationID:   organizationID,
		Name:             strings.TrimSpace(cmd.Name),
		Description:      strings.TrimSpace(cmd.Description),
		IdentifierFields: fields,
		OTPChannel:       channel,
		OTPExpiryMinutes: defaultPositive(cmd.OTPExpiryMinutes, entities.DefaultOTPExpiryMinutes),
		MaxOTPAttempts:   defaultPositive(cmd.MaxOTPAttempts, entities.DefaultMaxOTPAttempts),
		CodeLength:       defaultPositive(cmd.CodeLength, entities.DefaultCodeLength),
	}
	if err := uc.Policies.SavePolicy(ctx, policy); err != nil {
		return entities.IdentityPolicy{}, err
	}
	logger.Info("identity policy created",
		"event", "identity_policy_created",
		"module", "election-core/identity-challenge",
		"layer", "application",
		"policy_id", policy.ID,
		"organization_id", policy.OrganizationID,
	)
	return policy, nil
}

func (uc PolicyUseCase) UpdatePolicy(ctx context.Context, cmd UpdatePolicyCommand) (entities.IdentityPolicy, error) {
	policy, err := uc.Policies.GetPolicy(ctx, strings.TrimSpace(cmd.PolicyID))
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	if policy.Locked {
		return entities.IdentityPolicy{}, domainerrors.ErrPolicyLocked
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return entities.IdentityPolicy{}, domainerrors.ErrInvalidPolicyInput
	}
	fields, err := normalizeIdentifierFields(cmd.IdentifierFields)
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	channel, err := normalizeChannel(cmd.OTPChannel)
	if err != nil {
		return entities.IdentityPolicy{}, err
	}

	policy.Name = strings.TrimSpace(cmd.Name)
	policy.Description = strings.TrimSpace(cmd.Description)
	policy.IdentifierFields = fields
	policy.OTPChannel = channel
	policy.OTPExpiryMinutes = defaultPositive(cmd.OTPExpiryMinutes, entities.DefaultOTPExpiryMinutes)
	policy.MaxOTPAttempts = defaultPositive(cmd.MaxOTPAttempts, entities.DefaultMaxOTPAttempts)
	policy.CodeLength = defaultPositive(cmd.CodeLength, entities.DefaultCodeLength)
	policy.Touch(uc.now())
	if err := uc.Policies.UpdatePolicy(ctx, policy); err != nil {
		return entities.IdentityPolicy{}, err
	}
	return policy, nil
}

// LockPolicy is irreversible: the policy stays resolvable but can never be
// edited again.
func (uc PolicyUseCase) LockPolicy(ctx context.Context, policyID string) (entities.IdentityPolicy, error) {
	logger := application.ResolveLogger(uc.Logger)
	policy, err := uc.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	if policy.Locked {
		return policy, nil
	}
	policy.Locked = true
	policy.Touch(uc.now())
	if err := uc.Policies.UpdatePolicy(ctx, policy); err != nil {
		return entities.IdentityPolicy{}, err
	}
	logger.Info("identity policy locked",
		"event", "identity_policy_locked",
		"module", "election-core/identity-challenge",
		"layer", "application",
		"policy_id", policy.ID,
	)
	return policy, nil
}

// ActivatePolicy deactivates the organization's prior active policy and
// activates this one atomically, preserving the one-active-per-org invariant.
func (uc PolicyUseCase) ActivatePolicy(ctx context.Context, policyID string) (entities.IdentityPolicy, error) {
	logger := application.ResolveLogger(uc.Logger)
	policy, err := uc.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	if policy.Active {
		return policy, nil
	}
	if err := uc.Policies.ActivateExclusive(ctx, policy.ID, policy.OrganizationID, uc.now()); err != nil {
		return entities.IdentityPolicy{}, err
	}
	logger.Info("identity policy activated",
		"event", "identity_policy_activated",
		"module", "election-core/identity-challenge",
		"layer", "application",
		"policy_id", policy.ID,
		"organization_id", policy.OrganizationID,
	)
	return uc.Policies.GetPolicy(ctx, policy.ID)
}

func (uc PolicyUseCase) DeactivatePolicy(ctx context.Context, policyID string) (entities.IdentityPolicy, error) {
	policy, err := uc.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
	if err != nil {
		return entities.IdentityPolicy{}, err
	}
	if !policy.Active {
		return policy, nil
	}
	policy.Active = false
	policy.Touch(uc.now())
	if err := uc.Policies.UpdatePolicy(ctx, policy); err != nil {
		return entities.IdentityPolicy{}, err
	}
	return policy, nil
}

func (uc PolicyUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func normalizeIdentifierFields(fields []string) ([]string, error) {
	normalized := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		name := strings.ToLower(strings.TrimSpace(field))
		if name == "" {
			continue
		}
		if _, ok := allowedIdentifierFields[name]; !ok {
			return nil, domainerrors.ErrInvalidPolicyInput
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}
	if len(normalized) == 0 {
		return nil, domainerrors.ErrInvalidPolicyInput
	}
	return normalized, nil
}

func normalizeChannel(channel entities.OTPChannel) (entities.OTPChannel, error) {
	switch entities.OTPChannel(strings.ToUpper(strings.TrimSpace(string(channel)))) {
	case entities.ChannelEmail:
		return entities.ChannelEmail, nil
	case entities.ChannelSMS:
		return entities.ChannelSMS, nil
	case entities.ChannelNone:
		return entities.ChannelNone, nil
	default:
		return "", domainerrors.ErrInvalidPolicyInput
	}
}

func defaultPositive(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
