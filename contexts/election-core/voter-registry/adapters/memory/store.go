package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotcore/contexts/election-core/voter-registry/domain/entities"
	domainerrors "ballotcore/contexts/election-core/voter-registry/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	entries map[string]entities.VoterRegistryEntry
}

func NewStore(seed []entities.VoterRegistryEntry) *Store {
	entries := make(map[string]entities.VoterRegistryEntry, len(seed))
	for _, entry := range seed {
		entries[entry.ID] = entry
	}
	return &Store{entries: entries}
}

func (s *Store) SaveEntry(_ context.Context, entry entities.VoterRegistryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.ID == entry.ID {
			return domainerrors.ErrConflict
		}
		if existing.OrganizationID != entry.OrganizationID {
			continue
		}
		if identifierCollision(existing, entry) {
			return domainerrors.ErrConflict
		}
	}
	s.entries[entry.ID] = entry
	return nil
}

func (s *Store) UpdateEntry(_ context.Context, entry entities.VoterRegistryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[entry.ID]
	if !ok {
		return domainerrors.ErrEntryNotFound
	}
	if existing.Version != entry.PreviousVersion() {
		return domainerrors.ErrConflict
	}
	s.entries[entry.ID] = entry
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[strings.TrimSpace(entryID)]; !ok {
		return domainerrors.ErrEntryNotFound
	}
	delete(s.entries, strings.TrimSpace(entryID))
	return nil
}

func (s *Store) GetEntry(_ context.Context, entryID string) (entities.VoterRegistryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[strings.TrimSpace(entryID)]
	if !ok {
		return entities.VoterRegistryEntry{}, domainerrors.ErrEntryNotFound
	}
	return entry, nil
}

func (s *Store) FindByIdentifiers(_ context.Context, organizationID string, identifiers entities.Identifiers) (entities.VoterRegistryEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	normalized := identifiers.Normalized()
	for _, entry := range s.entries {
		if entry.OrganizationID != strings.TrimSpace(organizationID) {
			continue
		}
		if matchesIdentifier(entry, normalized) {
			return entry, true, nil
		}
	}
	return entities.VoterRegistryEntry{}, false, nil
}

func (s *Store) IdentifierExists(_ context.Context, organizationID string, field entities.IdentifierField, value string, excludeEntryID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.OrganizationID != strings.TrimSpace(organizationID) || entry.ID == excludeEntryID {
			continue
		}
		switch field {
		case entities.IdentifierMatricNumber:
			if entry.MatricNumber != "" && entry.MatricNumber == value {
				return true, nil
			}
		case entities.IdentifierEmail:
			if entry.Email != "" && entry.Email == value {
				return true, nil
			}
		case entities.IdentifierPhone:
			if entry.Phone != "" && entry.Phone == value {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Store) ListEntriesByOrganization(_ context.Context, organizationID string) ([]entities.VoterRegistryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.VoterRegistryEntry, 0)
	for _, entry := range s.entries {
		if entry.OrganizationID == strings.TrimSpace(organizationID) {
			items = append(items, entry)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CountByOrganization(_ context.Context, organizationID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, entry := range s.entries {
		if entry.OrganizationID == strings.TrimSpace(organizationID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkUsed(_ context.Context, entryID string, votedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[strings.TrimSpace(entryID)]
	if !ok {
		return false, domainerrors.ErrEntryNotFound
	}
	if entry.Used {
		return false, nil
	}
	stamp := votedAt.UTC()
	entry.Used = true
	entry.VotedAt = &stamp
	entry.Touch(stamp)
	s.entries[entry.ID] = entry
	return true, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func matchesIdentifier(entry entities.VoterRegistryEntry, identifiers entities.Identifiers) bool {
	if identifiers.MatricNumber != "" && entry.MatricNumber == identifiers.MatricNumber {
		return true
	}
	if identifiers.Email != "" && entry.Email == identifiers.Email {
		return true
	}
	if identifiers.Phone != "" && entry.Phone == identifiers.Phone {
		return true
	}
	return false
}

func identifierCollision(existing, candidate entities.VoterRegistryEntry) bool {
	if candidate.MatricNumber != "" && existing.MatricNumber == candidate.MatricNumber {
		return true
	}
	if candidate.Email != "" && existing.Email == candidate.Email {
		return true
	}
	if candidate.Phone != "" && existing.Phone == candidate.Phone {
		return true
	}
	return false
}
