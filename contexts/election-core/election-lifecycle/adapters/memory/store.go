package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	domainerrors "ballotcore/contexts/election-core/election-lifecycle/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory adapter used by tests and local wiring. It mirrors
// the postgres adapter's conditional-update semantics, including version
// compare-and-swap on election updates.
type Store struct {
	mu sync.RWMutex

	elections  map[string]entities.Election
	candidates map[string]entities.Candidate
	voteCounts map[string]int
}

func NewStore(seed []entities.Election) *Store {
	elections := make(map[string]entities.Election, len(seed))
	for _, election := range seed {
		elections[election.ID] = election
	}
	return &Store{
		elections:  elections,
		candidates: make(map[string]entities.Candidate),
		voteCounts: make(map[string]int),
	}
}

// SetVoteCount seeds the ledger projection consulted for turnout math.
func (s *Store) SetVoteCount(electionID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voteCounts[strings.TrimSpace(electionID)] = count
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[election.ID] = election
	return nil
}

func (s *Store) UpdateElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.elections[election.ID]
	if !ok {
		return domainerrors.ErrElectionNotFound
	}
	if existing.Version != election.PreviousVersion() {
		return domainerrors.ErrConflict
	}
	s.elections[election.ID] = election
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) ListElectionsByOrganization(_ context.Context, organizationID string, status entities.ElectionStatus) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if election.OrganizationID != strings.TrimSpace(organizationID) {
			continue
		}
		if status != "" && election.Status != status {
			continue
		}
		items = append(items, election)
	}
	sortElectionsByCreation(items)
	return items, nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	electionID string,
	from []entities.ElectionStatus,
	to entities.ElectionStatus,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range from {
		if election.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	election.Status = to
	election.Touch(updatedAt)
	s.elections[election.ID] = election
	return true, nil
}

func (s *Store) ListDueForActivation(_ context.Context, now time.Time) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if election.IsDraft() && election.WindowOpen(now) {
			items = append(items, election)
		}
	}
	sortElectionsByCreation(items)
	return items, nil
}

func (s *Store) ListDueForCompletion(_ context.Context, now time.Time) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0)
	for _, election := range s.elections {
		if (election.IsDraft() || election.IsActive()) && election.HasEnded(now) {
			items = append(items, election)
		}
	}
	sortElectionsByCreation(items)
	return items, nil
}

func (s *Store) CountVotesByElection(_ context.Context, electionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voteCounts[strings.TrimSpace(electionID)], nil
}

func (s *Store) CompleteWithTurnout(
	_ context.Context,
	electionID string,
	from []entities.ElectionStatus,
	turnout int,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return false, nil
	}
	matched := false
	for _, status := range from {
		if election.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	election.Status = entities.ElectionStatusCompleted
	election.VoterTurnout = turnout
	election.Touch(updatedAt)
	s.elections[election.ID] = election
	return true, nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.ID] = candidate
	return nil
}

func (s *Store) UpdateCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidate.ID]; !ok {
		return domainerrors.ErrCandidateNotFound
	}
	s.candidates[candidate.ID] = candidate
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidatesByElection(_ context.Context, electionID string, activeOnly bool) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.ElectionID != strings.TrimSpace(electionID) {
			continue
		}
		if activeOnly && !candidate.Active {
			continue
		}
		items = append(items, candidate)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortElectionsByCreation(items []entities.Election) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
