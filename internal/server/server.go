// HTTP API for the chargeback insights service
package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"

	"github.com/flashcart/insights/internal/auth"
	"github.com/flashcart/insights/internal/cache"
	"github.com/flashcart/insights/internal/config"
	"github.com/flashcart/insights/internal/observability"
	"github.com/flashcart/insights/internal/store"
)

// Server holds the API dependencies. The cache client is nil when Redis is
// disabled; every cache call site checks for that.
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	store   *store.Store
	cache   *cache.RedisClient
	metrics *observability.Metrics
	tracer  *observability.Tracer

	jwtManager  *auth.JWTManager
	authHandler *auth.AuthHandler

	startTime time.Time
	now       func() time.Time
}

// New creates the API server. The store should already be loaded; New does
// not trigger the load itself so construction stays cheap in tests.
func New(cfg *config.Config, logger *zap.Logger, st *store.Store, redisClient *cache.RedisClient, metrics *observability.Metrics) *Server {
	s := &Server{
		config:    cfg,
		logger:    logger,
		store:     st,
		cache:     redisClient,
		metrics:   metrics,
		tracer:    observability.NewTracer("insights-server"),
		startTime: time.Now(),
		now:       time.Now,
	}

	if cfg.Auth.Enabled {
		s.jwtManager = auth.NewJWTManager(cfg.Auth.JWTSecret)
		accounts := make([]auth.Account, 0, len(cfg.Auth.Users))
		for _, u := range cfg.Auth.Users {
			accounts = append(accounts, auth.Account{
				User: auth.User{
					ID:       userID(u.Email),
					Email:    u.Email,
					Username: u.Username,
					Role:     auth.UserRole(u.Role),
				},
				PasswordHash: u.PasswordHash,
			})
		}
		s.authHandler = auth.NewAuthHandler(auth.NewDirectory(accounts), s.jwtManager)
	}

	return s
}

// userID derives a stable identifier for a configured account. There is no
// user database, so the lowercased email doubles as the ID.
func userID(email string) string {
	return "user-" + strings.ToLower(email)
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(auth.RequestIDMiddleware())
	r.Use(auth.SecurityHeadersMiddleware())
	r.Use(auth.CORSMiddleware(s.config.Server.CORSOrigins))
	if s.metrics != nil {
		r.Use(observability.MetricsMiddleware(s.metrics))
	}
	if s.cache != nil && s.config.Limits.RequestsPerMinute > 0 {
		r.Use(s.rateLimitMiddleware)
	}

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.HandleHealth)

		if s.authHandler != nil {
			r.Post("/auth/login", s.authHandler.Login)
			r.Post("/auth/refresh", s.authHandler.Refresh)
		}

		r.Group(func(r chi.Router) {
			if s.jwtManager != nil {
				r.Use(auth.JWTMiddleware(s.jwtManager))
			}

			r.Group(func(r chi.Router) {
				if s.jwtManager != nil {
					r.Use(auth.RequirePermission(auth.PermChargebackRead))
				}
				r.Get("/chargebacks", s.HandleListChargebacks)
			})

			r.Group(func(r chi.Router) {
				if s.jwtManager != nil {
					r.Use(auth.RequirePermission(auth.PermExportRun))
				}
				r.Get("/chargebacks/export", s.HandleExportChargebacks)
			})

			r.Group(func(r chi.Router) {
				if s.jwtManager != nil {
					r.Use(auth.RequirePermission(auth.PermMetricsRead))
				}
				r.Get("/metrics/chargebacks", s.HandleChargebackMetrics)
			})
		})
	})

	return r
}

// rateLimitMiddleware enforces the per-client sliding window. Redis being
// down fails open: throttling is protection, not a correctness guarantee.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		allowed, err := s.cache.CheckRateLimit(host, r.URL.Path, s.config.Limits.RequestsPerMinute, time.Minute)
		if err != nil {
			log.Error().Err(err).Msg("Rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeJSONError(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HealthResponse reports service status and table sizes.
type HealthResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	RecordsLoaded map[string]int `json:"records_loaded"`
	CacheHealthy  *bool          `json:"cache_healthy,omitempty"`
}

// HandleHealth reports liveness plus how many rows each table holds. It is
// public: load balancers probe it before any login happens.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	chargebacks, err := s.store.Chargebacks()
	if err != nil {
		log.Error().Err(err).Msg("Health check: table load failed")
		writeJSONError(w, "data not available", http.StatusServiceUnavailable)
		if s.metrics != nil {
			s.metrics.UpdateServiceHealth(false)
		}
		return
	}
	transactions, _ := s.store.Transactions()

	resp := HealthResponse{
		Status:        "ok",
		Version:       s.config.Version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		RecordsLoaded: map[string]int{
			"chargebacks":        len(chargebacks),
			"transactions_daily": len(transactions),
		},
	}

	if s.cache != nil {
		healthy := s.cache.Ping() == nil
		resp.CacheHealthy = &healthy
	}
	if s.metrics != nil {
		s.metrics.UpdateServiceHealth(true)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
		"code":    status,
	})
}
