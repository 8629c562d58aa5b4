package httpserver

import (
	"errors"
	"net/http"

	reporterrors "ballotcore/contexts/election-core/turnout-reports/domain/errors"
)

func (s *Server) registerReportRoutes() {
	s.mux.HandleFunc("GET /v1/reports/elections/{election_id}", s.handleElectionSummary)
	s.mux.HandleFunc("GET /v1/reports/registry/{organization_id}", s.handleRegistrySummary)
}

func (s *Server) handleElectionSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reports.Handler.ElectionSummaryHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegistrySummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.reports.Handler.RegistrySummaryHandler(r.Context(), r.PathValue("organization_id"))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeReportDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reporterrors.ErrElectionNotFound):
		writeError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, reporterrors.ErrInvalidReportInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
