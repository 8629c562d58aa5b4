// Package voteledger owns the transactional critical path: castVote with its
// guard chain and the atomic ledger commit, plus read queries over the ledger.
package voteledger

import (
	"log/slog"

	httpadapter "ballotcore/contexts/election-core/vote-ledger/adapters/http"
	"ballotcore/contexts/election-core/vote-ledger/adapters/memory"
	"ballotcore/contexts/election-core/vote-ledger/application/commands"
	"ballotcore/contexts/election-core/vote-ledger/application/queries"
	"ballotcore/contexts/election-core/vote-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Votes   commands.VoteUseCase
	Queries queries.VoteQueryUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Votes     ports.VoteRepository
	Elections ports.ElectionDirectory
	Voters    ports.VoterDirectory
	Policies  ports.PolicyDirectory
	Notifier  ports.ConfirmationNotifier
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Votes:     deps.Votes,
		Elections: deps.Elections,
		Voters:    deps.Voters,
		Policies:  deps.Policies,
		Notifier:  deps.Notifier,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	queryUseCase := queries.VoteQueryUseCase{
		Votes: deps.Votes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:   voteUseCase,
			Queries: queryUseCase,
			Logger:  deps.Logger,
		},
		Votes:   voteUseCase,
		Queries: queryUseCase,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Votes:     store,
		Elections: store,
		Voters:    store,
		Policies:  store,
		Notifier:  store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
