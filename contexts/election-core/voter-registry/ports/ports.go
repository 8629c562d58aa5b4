package ports

import (
	"context"
	"time"

	"ballotcore/contexts/election-core/voter-registry/domain/entities"
)

type EntryRepository interface {
	SaveEntry(ctx context.Context, entry entities.VoterRegistryEntry) error
	// UpdateEntry is guarded by the entry's previous version.
	UpdateEntry(ctx context.Context, entry entities.VoterRegistryEntry) error
	DeleteEntry(ctx context.Context, entryID string) error
	GetEntry(ctx context.Context, entryID string) (entities.VoterRegistryEntry, error)
	FindByIdentifiers(ctx context.Context, organizationID string, identifiers entities.Identifiers) (entities.VoterRegistryEntry, bool, error)
	IdentifierExists(ctx context.Context, organizationID string, field entities.IdentifierField, value string, excludeEntryID string) (bool, error)
	ListEntriesByOrganization(ctx context.Context, organizationID string) ([]entities.VoterRegistryEntry, error)
	CountByOrganization(ctx context.Context, organizationID string) (int, error)
	// MarkUsed flips used=false to true conditionally; false means the entry
	// was already used.
	MarkUsed(ctx context.Context, entryID string, votedAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
