// Package turnoutreports serves read-only election and registry summaries:
// turnout percentages, per-candidate tallies and the leading candidate.
package turnoutreports

import (
	"log/slog"

	httpadapter "ballotcore/contexts/election-core/turnout-reports/adapters/http"
	"ballotcore/contexts/election-core/turnout-reports/adapters/memory"
	"ballotcore/contexts/election-core/turnout-reports/application/queries"
	"ballotcore/contexts/election-core/turnout-reports/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Reports queries.ReportQueryUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Source ports.ReportSource
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	reportUseCase := queries.ReportQueryUseCase{
		Source: deps.Source,
	}
	return Module{
		Handler: httpadapter.Handler{
			Reports: reportUseCase,
			Logger:  deps.Logger,
		},
		Reports: reportUseCase,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Source: store,
		Logger: logger,
	})
	module.Store = store
	return module
}
