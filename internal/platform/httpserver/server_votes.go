package httpserver

import (
	"errors"
	"net/http"

	voteerrors "ballotcore/contexts/election-core/vote-ledger/domain/errors"
	votehttp "ballotcore/contexts/election-core/vote-ledger/transport/http"
)

func (s *Server) registerVoteRoutes() {
	s.mux.HandleFunc("POST /v1/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/votes/{vote_id}", s.handleGetVote)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/votes", s.handleListVotesByElection)
	s.mux.HandleFunc("GET /v1/registry/entries/{entry_id}/votes", s.handleListVotesByVoter)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/votes/{entry_id}/status", s.handleHasVoted)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req votehttp.CastVoteRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = resolveClientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}
	resp, err := s.ledger.Handler.CastVoteHandler(r.Context(), req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetVote(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.GetVoteHandler(r.Context(), r.PathValue("vote_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotesByElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListByElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotesByVoter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListByVoterHandler(r.Context(), r.PathValue("entry_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.HasVotedHandler(r.Context(), r.PathValue("election_id"), r.PathValue("entry_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrVoteNotFound):
		writeError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrElectionNotFound):
		writeError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrCandidateNotFound):
		writeError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrVoterNotFound):
		writeError(w, http.StatusNotFound, "voter_not_found", err.Error())
	case errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, voteerrors.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, voteerrors.ErrElectionNotOpen),
		errors.Is(err, voteerrors.ErrCandidateNotInElection),
		errors.Is(err, voteerrors.ErrCandidateInactive),
		errors.Is(err, voteerrors.ErrWriteInNotAllowed),
		errors.Is(err, voteerrors.ErrCrossTenant),
		errors.Is(err, voteerrors.ErrVoterLocked),
		errors.Is(err, voteerrors.ErrNoActivePolicy),
		errors.Is(err, voteerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
