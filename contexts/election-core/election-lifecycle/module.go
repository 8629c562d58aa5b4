// Package electionlifecycle owns the election state machine and ballot roster:
// draft configuration, explicit and scheduled status transitions, candidate
// management, and the turnout figure recomputed at completion.
package electionlifecycle

import (
	"log/slog"

	httpadapter "ballotcore/contexts/election-core/election-lifecycle/adapters/http"
	"ballotcore/contexts/election-core/election-lifecycle/adapters/memory"
	"ballotcore/contexts/election-core/election-lifecycle/application/commands"
	"ballotcore/contexts/election-core/election-lifecycle/application/queries"
	"ballotcore/contexts/election-core/election-lifecycle/application/workers"
	"ballotcore/contexts/election-core/election-lifecycle/domain/entities"
	"ballotcore/contexts/election-core/election-lifecycle/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Sweeper workers.StatusSweeper
	Store   *memory.Store
}

type Dependencies struct {
	Elections  ports.ElectionRepository
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	electionUseCase := commands.ElectionUseCase{
		Elections: deps.Elections,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	candidateUseCase := commands.CandidateUseCase{
		Elections:  deps.Elections,
		Candidates: deps.Candidates,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.ElectionQueryUseCase{
		Elections:  deps.Elections,
		Candidates: deps.Candidates,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections:  electionUseCase,
			Candidates: candidateUseCase,
			Queries:    queryUseCase,
			Logger:     deps.Logger,
		},
		Sweeper: workers.StatusSweeper{
			Elections: deps.Elections,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Election, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Elections:  store,
		Candidates: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
