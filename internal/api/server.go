// Package api exposes the HTTP surface of the bridge: the GoHighLevel
// webhook receiver, the Clio OAuth flow, health and status endpoints, and
// operational views over the transaction log and metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/casebridge/casebridge/internal/clio"
	"github.com/casebridge/casebridge/internal/config"
	"github.com/casebridge/casebridge/internal/pipeline"
	"github.com/casebridge/casebridge/internal/store"
)

// Processor runs one webhook delivery through the intake pipeline.
// *pipeline.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, payload pipeline.WebhookPayload) pipeline.Result
}

// Authorizer drives the Clio OAuth flow. *clio.Client implements it.
type Authorizer interface {
	AuthorizeURL() string
	ExchangeCode(ctx context.Context, code string) (clio.TokenResponse, error)
}

// Storage is the persistence surface the handlers need. *store.Store
// implements it.
type Storage interface {
	ClioToken(ctx context.Context) (string, error)
	SaveTokens(ctx context.Context, service, clientID, clientSecret, baseURL, accessToken, refreshToken string) error
	RecentTransactions(ctx context.Context, limit int) ([]store.Transaction, error)
	RecentErrors(ctx context.Context, limit int) ([]store.ErrorEntry, error)
}

type Server struct {
	router   *chi.Mux
	srv      *http.Server
	pipeline Processor
	oauth    Authorizer
	storage  Storage
	cfg      *config.Config
	logger   *slog.Logger
}

func NewServer(cfg *config.Config, proc Processor, oauth Authorizer, storage Storage, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		pipeline: proc,
		oauth:    oauth,
		storage:  storage,
		cfg:      cfg,
		logger:   logger,
	}
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	router.Get("/", s.root)
	router.Get("/health", s.health)
	router.Get("/authorize", s.authorize)
	router.Get("/api/clio-callback", s.clioCallback)
	router.Post("/api/ghl-webhook", s.ghlWebhook)
	router.Post("/api/clio-webhook", s.clioWebhook)
	router.Get("/api/logs", s.logs)
	router.Handle("/metrics", promhttp.Handler())

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	_, err := s.storage.ClioToken(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"service":       "casebridge",
		"status":        "running",
		"authenticated": err == nil,
		"endpoints": map[string]string{
			"authorize": "/authorize",
			"webhook":   "/api/ghl-webhook",
			"health":    "/health",
			"logs":      "/api/logs",
			"metrics":   "/metrics",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorize redirects the operator's browser into Clio's OAuth consent
// screen. Clio redirects back to /api/clio-callback.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.oauth.AuthorizeURL(), http.StatusFound)
}

func (s *Server) clioCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "missing authorization code",
		})
		return
	}

	tokens, err := s.oauth.ExchangeCode(r.Context(), code)
	if err != nil {
		s.logger.Error("token exchange failed", "error", err)
		respondJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": "token exchange with Clio failed",
		})
		return
	}

	err = s.storage.SaveTokens(r.Context(), store.ServiceClio,
		s.cfg.ClioClientID, s.cfg.ClioSecret, s.cfg.ClioBaseURL,
		tokens.AccessToken, tokens.RefreshToken)
	if err != nil {
		s.logger.Error("saving tokens failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "failed to store credentials",
		})
		return
	}

	s.logger.Info("clio authorization complete")
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "authorized",
		"message": "Clio connected. Webhooks will now be bridged.",
	})
}

type webhookResponse struct {
	Status string `json:"status"`
	pipeline.Result
}

func (s *Server) ghlWebhook(w http.ResponseWriter, r *http.Request) {
	var payload pipeline.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "invalid JSON payload",
		})
		return
	}

	result := s.pipeline.Process(r.Context(), payload)

	status := "success"
	code := http.StatusOK
	switch {
	case result.Rejected:
		status = "rejected"
	case errors.Is(result.Err, pipeline.ErrNotAuthenticated),
		errors.Is(result.Err, clio.ErrAuthExpired):
		status = "error"
		code = http.StatusUnauthorized
	case errors.Is(result.Err, pipeline.ErrSubmissionFailed):
		status = "error"
		code = http.StatusBadGateway
	case result.Err != nil:
		status = "error"
		code = http.StatusInternalServerError
	}

	respondJSON(w, code, webhookResponse{Status: status, Result: result})
}

// clioWebhook acknowledges inbound Clio webhooks. Nothing is derived from
// them yet; the route exists so Clio's webhook registration succeeds.
func (s *Server) clioWebhook(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (s *Server) logs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": "limit must be a positive integer",
			})
			return
		}
		if n > 200 {
			n = 200
		}
		limit = n
	}

	transactions, err := s.storage.RecentTransactions(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing transactions failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "failed to read transaction log",
		})
		return
	}
	errorEntries, err := s.storage.RecentErrors(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing errors failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "failed to read error log",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"errors":       errorEntries,
	})
}

func respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
