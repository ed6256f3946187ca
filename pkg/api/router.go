// Package api provides HTTP API server components.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/api/handlers"
	"github.com/grammarpost/grammarpost/pkg/api/middleware"
	"github.com/grammarpost/grammarpost/pkg/api/response"
	"github.com/grammarpost/grammarpost/pkg/logger"

	_ "github.com/grammarpost/grammarpost/docs/swagger" // Import generated docs
)

// Handlers holds all HTTP handlers. Nil handlers leave their routes unregistered.
type Handlers struct {
	// Grammar handles the correct-grammar endpoint
	Grammar *handlers.GrammarHandler

	// Tweet handles tweet posting and lookup
	Tweet *handlers.TweetHandler

	// Auth handles the OAuth 2.0 authorization endpoints
	Auth *handlers.AuthHandler

	// Health handles health check endpoints
	Health *handlers.HealthHandler

	// Metrics is the optional metrics recorder
	Metrics middleware.MetricsRecorder
}

// uiConfig tells the embedded form where the API lives.
type uiConfig struct {
	APIPrefix string `json:"apiPrefix"`
	MaxLength int    `json:"maxLength"`
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, h *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	if h.Metrics != nil {
		r.Use(middleware.Metrics(h.Metrics))
	}

	r.Use(middleware.CORS(&cfg.Server.CORS))
	r.Use(middleware.MaxBodyBytes(cfg.Server.HTTP.MaxBodyBytes))

	RegisterRoutes(r, cfg, log, h)

	return r
}

// RegisterRoutes registers all routes.
func RegisterRoutes(r chi.Router, cfg *config.Config, log logger.Logger, h *Handlers) {
	r.Route(cfg.Server.APIPrefix, func(r chi.Router) {
		if cfg.Server.HTTP.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.Server.HTTP.RequestTimeout))
		}

		if h.Grammar != nil {
			r.Post("/correct-grammar", h.Grammar.CorrectGrammar)
		}

		r.Route("/tweet", func(r chi.Router) {
			if h.Tweet != nil {
				r.Post("/", h.Tweet.PostTweet)
			}
			// Static segments win over {id} in chi.
			if h.Auth != nil {
				r.Get("/auth", h.Auth.AuthURL)
				r.Get("/callback", h.Auth.Callback)
			}
			if h.Tweet != nil {
				r.Get("/{id}", h.Tweet.GetTweet)
			}
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			response.Error(w, http.StatusNotFound, "Not found", middleware.GetRequestID(r.Context()))
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", middleware.GetRequestID(r.Context()))
		})
	})

	// Health check routes (not prefixed)
	if h.Health != nil {
		r.Get("/health", h.Health.Health)
		r.Get("/ready", h.Health.Ready)
		r.Get("/status", h.Health.Status)
	}

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	if cfg.UI.Enabled {
		maxLength := cfg.Twitter.MaxLength
		if maxLength < 1 {
			maxLength = handlers.DefaultMaxTweetLength
		}
		r.Get("/ui-config.json", func(w http.ResponseWriter, _ *http.Request) {
			response.JSON(w, http.StatusOK, uiConfig{APIPrefix: cfg.Server.APIPrefix, MaxLength: maxLength})
		})

		ui := newUIHandler(log)
		r.Get("/*", ui.ServeHTTP)
		r.Head("/*", ui.ServeHTTP)
	}
}
