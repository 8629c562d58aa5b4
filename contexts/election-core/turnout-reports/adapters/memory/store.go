package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ballotcore/contexts/election-core/turnout-reports/domain/entities"
	"ballotcore/contexts/election-core/turnout-reports/ports"
)

// Store is a seedable report source for tests.
type Store struct {
	mu sync.RWMutex

	elections  map[string]ports.ElectionFacts
	candidates map[string][]entities.CandidateTally
	voteCounts map[string]int
	registries map[string]ports.RegistryFacts
}

func NewStore() *Store {
	return &Store{
		elections:  make(map[string]ports.ElectionFacts),
		candidates: make(map[string][]entities.CandidateTally),
		voteCounts: make(map[string]int),
		registries: make(map[string]ports.RegistryFacts),
	}
}

func (s *Store) SetElection(facts ports.ElectionFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[facts.ElectionID] = facts
}

func (s *Store) SetCandidates(electionID string, tallies []entities.CandidateTally) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[electionID] = append([]entities.CandidateTally(nil), tallies...)
}

func (s *Store) SetVoteCount(electionID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voteCounts[electionID] = count
}

func (s *Store) SetRegistry(organizationID string, facts ports.RegistryFacts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registries[organizationID] = facts
}

func (s *Store) GetElectionFacts(_ context.Context, electionID string) (ports.ElectionFacts, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	facts, ok := s.elections[strings.TrimSpace(electionID)]
	return facts, ok, nil
}

func (s *Store) ListCandidateTallies(_ context.Context, electionID string) ([]entities.CandidateTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tallies := append([]entities.CandidateTally(nil), s.candidates[strings.TrimSpace(electionID)]...)
	sort.Slice(tallies, func(i, j int) bool {
		return tallies[i].CandidateID < tallies[j].CandidateID
	})
	return tallies, nil
}

func (s *Store) CountVotesByElection(_ context.Context, electionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voteCounts[strings.TrimSpace(electionID)], nil
}

func (s *Store) GetRegistryFacts(_ context.Context, organizationID string) (ports.RegistryFacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registries[strings.TrimSpace(organizationID)], nil
}

var _ ports.ReportSource = (*Store)(nil)
