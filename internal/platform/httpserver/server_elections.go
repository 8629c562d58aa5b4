package httpserver

import (
	"errors"
	"net/http"

	electionerrors "ballotcore/contexts/election-core/election-lifecycle/domain/errors"
	electionhttp "ballotcore/contexts/election-core/election-lifecycle/transport/http"
)

func (s *Server) registerElectionRoutes() {
	s.mux.HandleFunc("POST /v1/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /v1/elections", s.handleListElections)
	s.mux.HandleFunc("GET /v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("PUT /v1/elections/{election_id}", s.handleUpdateElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/activate", s.handleActivateElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/pause", s.handlePauseElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/complete", s.handleCompleteElection)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/publish-results", s.handlePublishResults)
	s.mux.HandleFunc("PUT /v1/elections/{election_id}/total-voters", s.handleSetTotalVoters)

	s.mux.HandleFunc("POST /v1/elections/{election_id}/candidates", s.handleAddCandidate)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/candidates", s.handleListCandidates)
	s.mux.HandleFunc("PUT /v1/elections/{election_id}/candidates/{candidate_id}", s.handleUpdateCandidate)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/candidates/{candidate_id}/activate", s.handleActivateCandidate)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/candidates/{candidate_id}/deactivate", s.handleDeactivateCandidate)
}

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CreateElectionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.elections.Handler.CreateElectionHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListElections(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.elections.Handler.ListElectionsHandler(r.Context(), query.Get("organization_id"), query.Get("status"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.GetElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateElection(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.UpdateElectionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.elections.Handler.UpdateElectionHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivateElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ActivateElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePauseElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.PauseElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.CompleteElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePublishResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.PublishResultsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetTotalVoters(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.SetTotalVotersRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.elections.Handler.SetTotalVotersHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.AddCandidateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.elections.Handler.AddCandidateHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"
	resp, err := s.elections.Handler.ListCandidatesHandler(r.Context(), r.PathValue("election_id"), activeOnly)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.UpdateCandidateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.elections.Handler.UpdateCandidateHandler(r.Context(), r.PathValue("election_id"), r.PathValue("candidate_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivateCandidate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.ActivateCandidateHandler(r.Context(), r.PathValue("election_id"), r.PathValue("candidate_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivateCandidate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.elections.Handler.DeactivateCandidateHandler(r.Context(), r.PathValue("election_id"), r.PathValue("candidate_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrElectionNotFound):
		writeError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrCandidateNotFound):
		writeError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidElectionInput),
		errors.Is(err, electionerrors.ErrInvalidCandidateInput),
		errors.Is(err, electionerrors.ErrElectionWindowInvalid),
		errors.Is(err, electionerrors.ErrElectionDurationTooShort),
		errors.Is(err, electionerrors.ErrElectionDurationTooLong):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, electionerrors.ErrElectionAlreadyActive),
		errors.Is(err, electionerrors.ErrElectionCompleted),
		errors.Is(err, electionerrors.ErrElectionNotActive),
		errors.Is(err, electionerrors.ErrActivateBeforeStart),
		errors.Is(err, electionerrors.ErrActivateAfterEnd),
		errors.Is(err, electionerrors.ErrCompleteBeforeEnd),
		errors.Is(err, electionerrors.ErrElectionNotCompleted),
		errors.Is(err, electionerrors.ErrResultsAlreadyPublished),
		errors.Is(err, electionerrors.ErrElectionNotDraft),
		errors.Is(err, electionerrors.ErrWriteInNotAllowed),
		errors.Is(err, electionerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
