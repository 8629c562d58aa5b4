// Package voterregistry owns enrollment, per-organization identifier
// uniqueness, eligibility, lockout accounting and the used/votedAt state
// consumed by the voting flow.
package voterregistry

import (
	"log/slog"

	httpadapter "ballotcore/contexts/election-core/voter-registry/adapters/http"
	"ballotcore/contexts/election-core/voter-registry/adapters/memory"
	"ballotcore/contexts/election-core/voter-registry/application/commands"
	"ballotcore/contexts/election-core/voter-registry/application/queries"
	"ballotcore/contexts/election-core/voter-registry/domain/entities"
	"ballotcore/contexts/election-core/voter-registry/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Registry commands.RegistryUseCase
	Queries  queries.RegistryQueryUseCase
	Store    *memory.Store
}

type Dependencies struct {
	Entries ports.EntryRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registryUseCase := commands.RegistryUseCase{
		Entries: deps.Entries,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	queryUseCase := queries.RegistryQueryUseCase{
		Entries: deps.Entries,
	}
	return Module{
		Handler: httpadapter.Handler{
			Registry: registryUseCase,
			Queries:  queryUseCase,
			Logger:   deps.Logger,
		},
		Registry: registryUseCase,
		Queries:  queryUseCase,
	}
}

func NewInMemoryModule(seed []entities.VoterRegistryEntry, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Entries: store,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
