package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	domainerrors "ballotcore/contexts/election-core/identity-challenge/domain/errors"
	"ballotcore/contexts/election-core/identity-challenge/ports"

	"github.com/google/uuid"
)

// Delivery is a captured notifier call, recorded for tests.
type Delivery struct {
	Identifier string
	Channel    entities.OTPChannel
	Message    string
}

type voterState struct {
	projection ports.VoterProjection
	attempts   int
}

type Store struct {
	mu sync.RWMutex

	policies   map[string]entities.IdentityPolicy
	challenges map[string]entities.OTPChallenge
	voters     map[string]*voterState
	deliveries []Delivery
}

func NewStore(seed []entities.IdentityPolicy) *Store {
	policies := make(map[string]entities.IdentityPolicy, len(seed))
	for _, policy := range seed {
		policies[policy.ID] = policy
	}
	return &Store{
		policies:   policies,
		challenges: make(map[string]entities.OTPChallenge),
		voters:     make(map[string]*voterState),
	}
}

// SetVoter seeds the registry projection consulted by the verification flow.
func (s *Store) SetVoter(projection ports.VoterProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[projection.VoterRegistryID] = &voterState{projection: projection}
}

// Deliveries returns the captured notifier calls in dispatch order.
func (s *Store) Deliveries() []Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Delivery(nil), s.deliveries...)
}

// VoterAttempts reports the recorded attempt count for a seeded voter.
func (s *Store) VoterAttempts(voterRegistryID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.voters[voterRegistryID]; ok {
		return state.attempts
	}
	return 0
}

func (s *Store) SavePolicy(_ context.Context, policy entities.IdentityPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.ID] = policy
	return nil
}

func (s *Store) UpdatePolicy(_ context.Context, policy entities.IdentityPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.policies[policy.ID]
	if !ok {
		return domainerrors.ErrPolicyNotFound
	}
	if existing.Version != policy.PreviousVersion() {
		return domainerrors.ErrConflict
	}
	s.policies[policy.ID] = policy
	return nil
}

func (s *Store) GetPolicy(_ context.Context, policyID string) (entities.IdentityPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[strings.TrimSpace(policyID)]
	if !ok {
		return entities.IdentityPolicy{}, domainerrors.ErrPolicyNotFound
	}
	return policy, nil
}

func (s *Store) GetActivePolicy(_ context.Context, organizationID string) (entities.IdentityPolicy, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, policy := range s.policies {
		if policy.OrganizationID == strings.TrimSpace(organizationID) && policy.Active {
			return policy, true, nil
		}
	}
	return entities.IdentityPolicy{}, false, nil
}

func (s *Store) ListPoliciesByOrganization(_ context.Context, organizationID string) ([]entities.IdentityPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.IdentityPolicy, 0)
	for _, policy := range s.policies {
		if policy.OrganizationID == strings.TrimSpace(organizationID) {
			items = append(items, policy)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ActivateExclusive(_ context.Context, policyID string, organizationID string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.policies[strings.TrimSpace(policyID)]
	if !ok {
		return domainerrors.ErrPolicyNotFound
	}
	for id, policy := range s.policies {
		if policy.OrganizationID == strings.TrimSpace(organizationID) && policy.Active {
			policy.Active = false
			policy.Touch(updatedAt)
			s.policies[id] = policy
		}
	}
	target.Active = true
	target.Touch(updatedAt)
	s.policies[target.ID] = target
	return nil
}

func (s *Store) SaveChallenge(_ context.Context, challenge entities.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.ID] = challenge
	return nil
}

func (s *Store) RecordAttempt(_ context.Context, challengeID string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[strings.TrimSpace(challengeID)]
	if !ok {
		return 0, domainerrors.ErrChallengeNotFound
	}
	challenge.Attempts++
	challenge.Touch(now)
	s.challenges[challenge.ID] = challenge
	return challenge.Attempts, nil
}

func (s *Store) MarkChallengeUsed(_ context.Context, challengeID string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[strings.TrimSpace(challengeID)]
	if !ok {
		return domainerrors.ErrChallengeNotFound
	}
	if challenge.Used {
		return domainerrors.ErrChallengeUsed
	}
	challenge.Used = true
	stamp := usedAt
	challenge.UsedAt = &stamp
	challenge.Touch(usedAt)
	s.challenges[challenge.ID] = challenge
	return nil
}

func (s *Store) LatestChallenge(_ context.Context, identifier string, purpose string) (entities.OTPChallenge, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest entities.OTPChallenge
	found := false
	for _, challenge := range s.challenges {
		if challenge.Identifier != strings.TrimSpace(identifier) || challenge.Purpose != strings.TrimSpace(purpose) {
			continue
		}
		if !found || challenge.CreatedAt.After(latest.CreatedAt) {
			latest = challenge
			found = true
		}
	}
	return latest, found, nil
}

func (s *Store) InvalidateLive(_ context.Context, identifier string, purpose string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, challenge := range s.challenges {
		if challenge.Identifier != strings.TrimSpace(identifier) || challenge.Purpose != strings.TrimSpace(purpose) {
			continue
		}
		if challenge.Live(now) {
			challenge.Used = true
			challenge.Touch(now)
			s.challenges[id] = challenge
		}
	}
	return nil
}

func (s *Store) DeleteExpiredBefore(_ context.Context, horizon time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, challenge := range s.challenges {
		if challenge.ExpiresAt.Before(horizon) {
			delete(s.challenges, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) FindVoter(_ context.Context, organizationID string, identifiers map[string]string) (ports.VoterProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, state := range s.voters {
		projection := state.projection
		if projection.OrganizationID != strings.TrimSpace(organizationID) {
			continue
		}
		if matches(projection, identifiers) {
			return projection, true, nil
		}
	}
	return ports.VoterProjection{}, false, nil
}

func (s *Store) RecordVerificationAttempt(_ context.Context, voterRegistryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.voters[strings.TrimSpace(voterRegistryID)]
	if !ok {
		return domainerrors.ErrVoterNotFound
	}
	state.attempts++
	return nil
}

func (s *Store) ResetVerificationAttempts(_ context.Context, voterRegistryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.voters[strings.TrimSpace(voterRegistryID)]
	if !ok {
		return domainerrors.ErrVoterNotFound
	}
	state.attempts = 0
	return nil
}

func (s *Store) Deliver(_ context.Context, identifier string, channel entities.OTPChannel, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, Delivery{
		Identifier: identifier,
		Channel:    channel,
		Message:    message,
	})
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func matches(projection ports.VoterProjection, identifiers map[string]string) bool {
	if value := identifiers["matric_number"]; value != "" && projection.MatricNumber == value {
		return true
	}
	if value := identifiers["email"]; value != "" && strings.EqualFold(projection.Email, value) {
		return true
	}
	if value := identifiers["phone"]; value != "" && projection.Phone == value {
		return true
	}
	return false
}
