package httpserver

import (
	"errors"
	"net/http"

	identityerrors "ballotcore/contexts/election-core/identity-challenge/domain/errors"
	identityhttp "ballotcore/contexts/election-core/identity-challenge/transport/http"
)

func (s *Server) registerIdentityRoutes() {
	s.mux.HandleFunc("POST /v1/identity/policies", s.handleCreatePolicy)
	s.mux.HandleFunc("GET /v1/identity/policies", s.handleListPolicies)
	s.mux.HandleFunc("GET /v1/identity/policies/{policy_id}", s.handleGetPolicy)
	s.mux.HandleFunc("PUT /v1/identity/policies/{policy_id}", s.handleUpdatePolicy)
	s.mux.HandleFunc("POST /v1/identity/policies/{policy_id}/lock", s.handleLockPolicy)
	s.mux.HandleFunc("POST /v1/identity/policies/{policy_id}/activate", s.handleActivatePolicy)
	s.mux.HandleFunc("POST /v1/identity/policies/{policy_id}/deactivate", s.handleDeactivatePolicy)

	s.mux.HandleFunc("POST /v1/identity/verify", s.handleVerifyVoter)
	s.mux.HandleFunc("POST /v1/identity/confirm", s.handleConfirmOTP)
	s.mux.HandleFunc("POST /v1/identity/resend", s.handleResendOTP)
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.CreatePolicyRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.identity.Handler.CreatePolicyHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.ListPoliciesHandler(r.Context(), r.URL.Query().Get("organization_id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.GetPolicyHandler(r.Context(), r.PathValue("policy_id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.UpdatePolicyRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.identity.Handler.UpdatePolicyHandler(r.Context(), r.PathValue("policy_id"), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLockPolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.LockPolicyHandler(r.Context(), r.PathValue("policy_id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivatePolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.ActivatePolicyHandler(r.Context(), r.PathValue("policy_id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeactivatePolicy(w http.ResponseWriter, r *http.Request) {
	resp, err := s.identity.Handler.DeactivatePolicyHandler(r.Context(), r.PathValue("policy_id"))
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyVoter(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.VerifyVoterRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.identity.Handler.VerifyVoterHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirmOTP(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.ConfirmOTPRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.identity.Handler.ConfirmOTPHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req identityhttp.ResendRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	resp, err := s.identity.Handler.ResendHandler(r.Context(), req)
	if err != nil {
		writeIdentityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeIdentityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identityerrors.ErrPolicyNotFound):
		writeError(w, http.StatusNotFound, "policy_not_found", err.Error())
	case errors.Is(err, identityerrors.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "challenge_not_found", err.Error())
	case errors.Is(err, identityerrors.ErrVoterNotFound):
		writeError(w, http.StatusNotFound, "voter_not_found", err.Error())
	case errors.Is(err, identityerrors.ErrInvalidPolicyInput),
		errors.Is(err, identityerrors.ErrInvalidChallengeInput),
		errors.Is(err, identityerrors.ErrMissingIdentifier):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, identityerrors.ErrCodeMismatch):
		writeError(w, http.StatusUnauthorized, "code_mismatch", err.Error())
	case errors.Is(err, identityerrors.ErrChallengeLocked),
		errors.Is(err, identityerrors.ErrVoterLocked):
		writeError(w, http.StatusTooManyRequests, "locked", err.Error())
	case errors.Is(err, identityerrors.ErrPolicyLocked),
		errors.Is(err, identityerrors.ErrNoActivePolicy),
		errors.Is(err, identityerrors.ErrChallengeExpired),
		errors.Is(err, identityerrors.ErrChallengeUsed),
		errors.Is(err, identityerrors.ErrVoterAlreadyVoted),
		errors.Is(err, identityerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
