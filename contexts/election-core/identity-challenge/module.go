// Package identitychallenge owns identity policy administration and the OTP
// engine: rate-limited, expiring one-time codes that confirm voter identity
// before a vote is accepted.
package identitychallenge

import (
	"log/slog"
	"time"

	httpadapter "ballotcore/contexts/election-core/identity-challenge/adapters/http"
	"ballotcore/contexts/election-core/identity-challenge/adapters/memory"
	"ballotcore/contexts/election-core/identity-challenge/application/commands"
	"ballotcore/contexts/election-core/identity-challenge/application/queries"
	"ballotcore/contexts/election-core/identity-challenge/application/workers"
	"ballotcore/contexts/election-core/identity-challenge/domain/entities"
	"ballotcore/contexts/election-core/identity-challenge/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Challenges commands.ChallengeUseCase
	Policies   commands.PolicyUseCase
	Cleaner    workers.ChallengeCleaner
	Store      *memory.Store
}

type Dependencies struct {
	Policies   ports.PolicyRepository
	Challenges ports.ChallengeRepository
	Directory  ports.VoterDirectory
	Notifier   ports.Notifier
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Retention  time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	policyUseCase := commands.PolicyUseCase{
		Policies: deps.Policies,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	challengeUseCase := commands.ChallengeUseCase{
		Challenges: deps.Challenges,
		Policies:   deps.Policies,
		Directory:  deps.Directory,
		Notifier:   deps.Notifier,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	policyQueries := queries.PolicyQueryUseCase{
		Policies: deps.Policies,
	}
	return Module{
		Handler: httpadapter.Handler{
			Policies:      policyUseCase,
			Challenges:    challengeUseCase,
			PolicyQueries: policyQueries,
			Logger:        deps.Logger,
		},
		Challenges: challengeUseCase,
		Policies:   policyUseCase,
		Cleaner: workers.ChallengeCleaner{
			Challenges: deps.Challenges,
			Clock:      deps.Clock,
			Retention:  deps.Retention,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.IdentityPolicy, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Policies:   store,
		Challenges: store,
		Directory:  store,
		Notifier:   store,
		Clock:      store,
		IDGen:      store,
		Retention:  workers.DefaultRetention,
		Logger:     logger,
	})
	module.Store = store
	return module
}
