package httpserver

import (
	"errors"
	"net/http"

	registryerrors "ballotcore/contexts/election-core/voter-registry/domain/errors"
	registryhttp "ballotcore/contexts/election-core/voter-registry/transport/http"
)

func (s *Server) registerRegistryRoutes() {
	s.mux.HandleFunc("POST /v1/registry/entries", s.handleEnroll)
	s.mux.HandleFunc("GET /v1/registry/entries", s.handleListEntries)
	s.mux.HandleFunc("GET /v1/registry/entries/{entry_id}", s.handleGetEntry)
	s.mux.HandleFunc("PUT /v1/registry/entries/{entry_id}", s.handleUpdateEntry)
	s.mux.HandleFunc("DELETE /v1/registry/entries/{entry_id}", s.handleRemoveEntry)
	s.mux.HandleFunc("POST /v1/registry/entries/{entry_id}/reset-attempts", s.handleResetAttempts)
	s.mux.HandleFunc("POST /v1/registry/eligibility", s.handleEligibility)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.EnrollRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.registry.Handler.EnrollHandler(r.Context(), req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ListEntriesHandler(r.Context(), r.URL.Query().Get("organization_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.GetEntryHandler(r.Context(), r.PathValue("entry_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.UpdateEntryRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.registry.Handler.UpdateEntryHandler(r.Context(), r.PathValue("entry_id"), req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Handler.RemoveEntryHandler(r.Context(), r.PathValue("entry_id")); err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetAttempts(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.ResetVerificationAttemptsHandler(r.Context(), r.PathValue("entry_id"))
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	var req registryhttp.EligibilityRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.registry.Handler.EligibilityHandler(r.Context(), req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "entry_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidEntryInput),
		errors.Is(err, registryerrors.ErrNoIdentifier):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, registryerrors.ErrDuplicateMatricNumber),
		errors.Is(err, registryerrors.ErrDuplicateEmail),
		errors.Is(err, registryerrors.ErrDuplicatePhone):
		writeError(w, http.StatusConflict, "duplicate_identifier", err.Error())
	case errors.Is(err, registryerrors.ErrEntryAlreadyUsed),
		errors.Is(err, registryerrors.ErrVoterLocked),
		errors.Is(err, registryerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
