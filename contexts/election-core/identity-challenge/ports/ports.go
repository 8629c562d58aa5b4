package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
)

type PolicyRepository interface {
	SavePolicy(ctx context.Context, policy entities.IdentityPolicy) error
	// UpdatePolicy is guarded by the policy's previous version.
	UpdatePolicy(ctx context.Context, policy entities.IdentityPolicy) error
	GetPolicy(ctx context.Context, policyID string) (entities.IdentityPolicy, error)
	GetActivePolicy(ctx context.Context, organizationID string) (entities.IdentityPolicy, bool, error)
	ListPoliciesByOrganization(ctx context.Context, organizationID string) ([]entities.IdentityPolicy, error)
	// ActivateExclusive deactivates the organization's current active policy
	// and activates the named one in a single transaction.
	ActivateExclusive(ctx context.Context, policyID string, organizationID string, updatedAt time.Time) error
}

type ChallengeRepository interface {
	SaveChallenge(ctx context.Context, challenge entities.OTPChallenge) error
	// RecordAttempt atomically increments the attempt counter and returns
	// the post-increment value; racing verifiers each draw a distinct slot.
	RecordAttempt(ctx context.Context, challengeID string, now time.Time) (int, error)
	// MarkChallengeUsed flips the single-use latch, guarded by used = false
	// so exactly one caller can win it; losers get ErrChallengeUsed.
	MarkChallengeUsed(ctx context.Context, challengeID string, usedAt time.Time) error
	// LatestChallenge returns the most recent challenge for the pair,
	// regardless of its used/expired state.
	LatestChallenge(ctx context.Context, identifier string, purpose string) (entities.OTPChallenge, bool, error)
	// InvalidateLive marks every live challenge for the pair as used without
	// a code match, enforcing the single-live-challenge invariant.
	InvalidateLive(ctx context.Context, identifier string, purpose string, now time.Time) error
	// DeleteExpiredBefore removes challenges whose expiry predates the
	// horizon; the predicate never touches unexpired rows.
	DeleteExpiredBefore(ctx context.Context, horizon time.Time) (int, error)
}

// VoterProjection is the registry state the verification flow reads.
type VoterProjection struct {
	VoterRegistryID string
	OrganizationID  string
	MatricNumber    string
	Email           string
	Phone           string
	Used            bool
	Locked          bool
}

// VoterDirectory is the seam to the voter registry: identifier lookup plus
// the attempt accounting hooks.
type VoterDirectory interface {
	FindVoter(ctx context.Context, organizationID string, identifiers map[string]string) (VoterProjection, bool, error)
	RecordVerificationAttempt(ctx context.Context, voterRegistryID string) error
	ResetVerificationAttempts(ctx context.Context, voterRegistryID string) error
}

// Notifier delivers codes and confirmations. Fire-and-forget: failures are
// logged by callers, never propagated.
type Notifier interface {
	Deliver(ctx context.Context, identifier string, channel entities.OTPChannel, message string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
