// Package chi is the inbound HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SL177Y-0/fomoscore/internal/domain"
	"github.com/SL177Y-0/fomoscore/internal/repository/session"
	credentialuc "github.com/SL177Y-0/fomoscore/internal/usecase/credential"
	healthuc "github.com/SL177Y-0/fomoscore/internal/usecase/health"
	scoreuc "github.com/SL177Y-0/fomoscore/internal/usecase/score"
)

// Error response codes on the wire.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeCredentialInvalid   = "credential_invalid"
	codeSessionNotFound     = "session_not_found"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeInternalError       = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// AuthURLConfig holds the pieces of the vault authorization URL.
type AuthURLConfig struct {
	BaseURL     string
	AppDID      string
	RedirectURL string
	Scopes      []string
}

// Server exposes the scoring pipeline over HTTP.
type Server struct {
	scores        *scoreuc.Service
	resolver      *credentialuc.Service
	sessions      *session.Store
	health        *healthuc.Service
	authURL       AuthURLConfig
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	scores *scoreuc.Service,
	resolver *credentialuc.Service,
	sessions *session.Store,
	health *healthuc.Service,
	authURL AuthURLConfig,
	logger *zap.Logger,
) *Server {
	s := &Server{
		scores:   scores,
		resolver: resolver,
		sessions: sessions,
		health:   health,
		authURL:  authURL,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNoCredential, http.StatusUnauthorized, codeCredentialInvalid),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, codeUpstreamUnavailable),
	}
	return s
}

// Routes registers all endpoints on the router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/auth/callback", s.AuthCallback)

	r.Route("/api/v1", func(r chirouter.Router) {
		r.Get("/auth/url", s.AuthURL)
		r.Post("/score", s.CalculateScore)
		r.Get("/score/{sessionID}", s.SessionScore)
		r.Route("/telegram", func(r chirouter.Router) {
			r.Get("/groups", s.TelegramGroups)
			r.Get("/messages", s.TelegramMessages)
			r.Get("/count", s.TelegramCount)
			r.Get("/stats", s.TelegramStats)
		})
	})
}

// scoreRequest is the POST /score body. The did field is advisory; the
// credential in authToken is authoritative.
type scoreRequest struct {
	DID       string `json:"did"`
	AuthToken string `json:"authToken"`
}

// keywordMatchesResponse mirrors domain.KeywordReport on the wire.
type keywordMatchesResponse struct {
	TotalCount int            `json:"totalCount"`
	Keywords   map[string]int `json:"keywords"`
}

type scoreResponse struct {
	Score          float64                `json:"score"`
	Title          string                 `json:"title"`
	DID            string                 `json:"did,omitempty"`
	Groups         int                    `json:"groups"`
	Messages       int                    `json:"messages"`
	KeywordMatches keywordMatchesResponse `json:"keywordMatches"`
	HasData        bool                   `json:"hasData"`
}

// CalculateScore handles POST /api/v1/score.
func (s *Server) CalculateScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.AuthToken == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "authToken is required")
		return
	}

	result, err := s.scores.Calculate(r.Context(), req.AuthToken)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreToResponse(result))
}

// SessionScore handles GET /api/v1/score/{sessionID}.
func (s *Server) SessionScore(w http.ResponseWriter, r *http.Request) {
	cred, ok := s.sessionCredential(w, r, chirouter.URLParam(r, "sessionID"))
	if !ok {
		return
	}

	result, err := s.scores.CalculateForCredential(r.Context(), cred)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreToResponse(result))
}

// AuthCallback handles GET /auth/callback. The vault redirects here after
// consent with the token in the query string; the credential is stored and
// the browser is sent back to the dashboard with the session id.
func (s *Server) AuthCallback(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("auth_token")
	if raw == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "auth_token query parameter is required")
		return
	}

	cred, err := s.resolver.Resolve(r.Context(), raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	id, err := s.sessions.Put(r.Context(), cred)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	q := url.Values{}
	q.Set("status", "success")
	q.Set("userId", id)
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusFound)
}

// AuthURL handles GET /api/v1/auth/url.
func (s *Server) AuthURL(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	for _, scope := range s.authURL.Scopes {
		q.Add("scopes", scope)
	}
	q.Set("redirectUrl", s.authURL.RedirectURL)
	if s.authURL.AppDID != "" {
		q.Set("appDID", s.authURL.AppDID)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": s.authURL.BaseURL + "/auth?" + q.Encode(),
	})
}

type activityResponse struct {
	Count int           `json:"count"`
	Items []domain.Item `json:"items"`
}

// TelegramGroups handles GET /api/v1/telegram/groups.
func (s *Server) TelegramGroups(w http.ResponseWriter, r *http.Request) {
	s.telegramActivity(w, r, domain.CollectionGroups)
}

// TelegramMessages handles GET /api/v1/telegram/messages.
func (s *Server) TelegramMessages(w http.ResponseWriter, r *http.Request) {
	s.telegramActivity(w, r, domain.CollectionMessages)
}

func (s *Server) telegramActivity(w http.ResponseWriter, r *http.Request, kind domain.CollectionKind) {
	cred, ok := s.sessionCredential(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	items, err := s.scores.Activity(r.Context(), cred, kind)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activityResponse{Count: len(items), Items: items})
}

// TelegramCount handles GET /api/v1/telegram/count.
func (s *Server) TelegramCount(w http.ResponseWriter, r *http.Request) {
	cred, ok := s.sessionCredential(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	groups, messages, err := s.scores.Counts(r.Context(), cred)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"groups":   groups,
		"messages": messages,
	})
}

// TelegramStats handles GET /api/v1/telegram/stats.
func (s *Server) TelegramStats(w http.ResponseWriter, r *http.Request) {
	cred, ok := s.sessionCredential(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	groups, messages, report, err := s.scores.Stats(r.Context(), cred)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"groups":   groups,
		"messages": messages,
		"keywordMatches": keywordMatchesResponse{
			TotalCount: report.Total,
			Keywords:   report.Counts,
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// sessionCredential resolves a session id from the request into a stored
// credential, writing the error response on failure.
func (s *Server) sessionCredential(w http.ResponseWriter, r *http.Request, id string) (domain.Credential, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "session id is required")
		return domain.Credential{}, false
	}

	cred, err := s.sessions.Lookup(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return domain.Credential{}, false
	}
	return cred, true
}

func scoreToResponse(result domain.ScoreResult) scoreResponse {
	return scoreResponse{
		Score:    result.Score,
		Title:    result.Title,
		DID:      result.DID,
		Groups:   result.Groups,
		Messages: result.Messages,
		KeywordMatches: keywordMatchesResponse{
			TotalCount: result.Keywords.Total,
			Keywords:   result.Keywords.Counts,
		},
		HasData: result.HasData,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNoCredential,
		domain.ErrSessionNotFound,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
