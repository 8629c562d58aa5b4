package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	electionlifecycle "ballotcore/contexts/election-core/election-lifecycle"
	identitychallenge "ballotcore/contexts/election-core/identity-challenge"
	turnoutreports "ballotcore/contexts/election-core/turnout-reports"
	voteledger "ballotcore/contexts/election-core/vote-ledger"
	voterregistry "ballotcore/contexts/election-core/voter-registry"

	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "ballotcore/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	validate *validator.Validate

	elections electionlifecycle.Module
	registry  voterregistry.Module
	identity  identitychallenge.Module
	ledger    voteledger.Module
	reports   turnoutreports.Module
}

func New(
	elections electionlifecycle.Module,
	registry voterregistry.Module,
	identity identitychallenge.Module,
	ledger voteledger.Module,
	reports turnoutreports.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		validate:  validator.New(),
		elections: elections,
		registry:  registry,
		identity:  identity,
		ledger:    ledger,
		reports:   reports,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.registerElectionRoutes()
	s.registerRegistryRoutes()
	s.registerIdentityRoutes()
	s.registerVoteRoutes()
	s.registerReportRoutes()
}

// decodeValid decodes the JSON body into req and runs struct validation.
// A false return means the error response has already been written.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
