package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-core/vote-ledger/domain/entities"
	domainerrors "ballotcore/contexts/election-core/vote-ledger/domain/errors"
	"ballotcore/contexts/election-core/vote-ledger/ports"

	"github.com/google/uuid"
)

// Store backs the ledger and every projection port for tests. One mutex
// serializes ApplyCastVote the way the unique index does in Postgres.
type Store struct {
	mu sync.Mutex

	elections     map[string]ports.ElectionProjection
	candidates    map[string]ports.CandidateProjection
	voters        map[string]ports.VoterProjection
	activeOrgs    map[string]bool
	votes         map[string]entities.Vote
	voterKeys     map[string]string
	tallies       map[string]int
	turnout       map[string]int
	confirmations []entities.Vote
}

func NewStore() *Store {
	return &Store{
		elections:  make(map[string]ports.ElectionProjection),
		candidates: make(map[string]ports.CandidateProjection),
		voters:     make(map[string]ports.VoterProjection),
		activeOrgs: make(map[string]bool),
		votes:      make(map[string]entities.Vote),
		voterKeys:  make(map[string]string),
		tallies:    make(map[string]int),
		turnout:    make(map[string]int),
	}
}

func (s *Store) SetElection(projection ports.ElectionProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[projection.ElectionID] = projection
}

func (s *Store) SetCandidate(projection ports.CandidateProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[projection.CandidateID] = projection
}

func (s *Store) SetVoter(projection ports.VoterProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[projection.VoterRegistryID] = projection
}

func (s *Store) SetActivePolicy(organizationID string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeOrgs[organizationID] = active
}

// Tally reports the recorded vote count for a candidate.
func (s *Store) Tally(candidateID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tallies[candidateID]
}

// Turnout reports the last recomputed turnout percentage for an election.
func (s *Store) Turnout(electionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnout[electionID]
}

// Confirmations returns the post-commit notifications in dispatch order.
func (s *Store) Confirmations() []entities.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Vote(nil), s.confirmations...)
}

func (s *Store) ApplyCastVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := vote.ElectionID + "/" + vote.VoterRegistryID
	if _, taken := s.voterKeys[key]; taken {
		return domainerrors.ErrAlreadyVoted
	}
	voter, ok := s.voters[vote.VoterRegistryID]
	if !ok {
		return domainerrors.ErrVoterNotFound
	}
	if voter.Used {
		return domainerrors.ErrAlreadyVoted
	}

	s.votes[vote.ID] = vote
	s.voterKeys[key] = vote.ID
	voter.Used = true
	s.voters[vote.VoterRegistryID] = voter
	s.tallies[vote.CandidateID]++

	if election, ok := s.elections[vote.ElectionID]; ok && election.TotalVoters > 0 {
		count := 0
		for _, existing := range s.votes {
			if existing.ElectionID == vote.ElectionID {
				count++
			}
		}
		s.turnout[vote.ElectionID] = int(float64(count)/float64(election.TotalVoters)*100 + 0.5)
	}
	return nil
}

func (s *Store) GetVote(_ context.Context, voteID string) (entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return entities.Vote{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

func (s *Store) ListVotesByElection(_ context.Context, electionID string) ([]entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, vote)
		}
	}
	sortVotes(items)
	return items, nil
}

func (s *Store) ListVotesByVoter(_ context.Context, voterRegistryID string) ([]entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.VoterRegistryID == strings.TrimSpace(voterRegistryID) {
			items = append(items, vote)
		}
	}
	sortVotes(items)
	return items, nil
}

func (s *Store) HasVoted(_ context.Context, electionID, voterRegistryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, taken := s.voterKeys[strings.TrimSpace(electionID)+"/"+strings.TrimSpace(voterRegistryID)]
	return taken, nil
}

func (s *Store) CountVotesByElection(_ context.Context, electionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, vote := range s.votes {
		if vote.ElectionID == strings.TrimSpace(electionID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountVotesByCandidate(_ context.Context, candidateID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, vote := range s.votes {
		if vote.CandidateID == strings.TrimSpace(candidateID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (ports.ElectionProjection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projection, ok := s.elections[strings.TrimSpace(electionID)]
	return projection, ok, nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (ports.CandidateProjection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projection, ok := s.candidates[strings.TrimSpace(candidateID)]
	return projection, ok, nil
}

func (s *Store) GetVoter(_ context.Context, voterRegistryID string) (ports.VoterProjection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projection, ok := s.voters[strings.TrimSpace(voterRegistryID)]
	return projection, ok, nil
}

func (s *Store) HasActivePolicy(_ context.Context, organizationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeOrgs[strings.TrimSpace(organizationID)], nil
}

func (s *Store) VoteRecorded(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmations = append(s.confirmations, vote)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortVotes(items []entities.Vote) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CastAt.Before(items[j].CastAt)
	})
}
