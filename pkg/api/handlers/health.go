package handlers

import (
	"net/http"
	"time"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/api/response"
	"github.com/grammarpost/grammarpost/pkg/version"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	cfg     *config.Config
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		cfg:     cfg,
		started: time.Now(),
	}
}

// ReadyResponse is the body of the readiness probe.
type ReadyResponse struct {
	Ready   bool     `json:"ready"`
	Missing []string `json:"missing,omitempty"`
}

// StatusResponse is the body of the status endpoint. It never carries secrets.
type StatusResponse struct {
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Version     version.BuildInfo `json:"version"`
	Uptime      string            `json:"uptime"`
	Providers   ProvidersStatus   `json:"providers"`
}

// ProvidersStatus reports which provider features are configured.
type ProvidersStatus struct {
	Dify    DifyStatus    `json:"dify"`
	Twitter TwitterStatus `json:"twitter"`
}

// DifyStatus reports the workflow provider configuration.
type DifyStatus struct {
	BaseURL    string `json:"baseUrl"`
	Configured bool   `json:"configured"`
}

// TwitterStatus reports the social provider configuration.
type TwitterStatus struct {
	BaseURL string `json:"baseUrl"`
	Post    bool   `json:"post"`
	Lookup  bool   `json:"lookup"`
	OAuth2  bool   `json:"oauth2"`
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles the /ready endpoint (readiness probe). The service is ready
// once grammar and posting credentials are configured.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	missing := h.cfg.MissingCredentials()
	if len(missing) > 0 {
		response.JSON(w, http.StatusServiceUnavailable, ReadyResponse{Ready: false, Missing: missing})
		return
	}
	response.JSON(w, http.StatusOK, ReadyResponse{Ready: true})
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	tw := h.cfg.Twitter
	response.JSON(w, http.StatusOK, StatusResponse{
		Service:     h.cfg.App.Name,
		Environment: h.cfg.App.Environment,
		Version:     version.Get(),
		Uptime:      time.Since(h.started).Round(time.Second).String(),
		Providers: ProvidersStatus{
			Dify: DifyStatus{
				BaseURL:    h.cfg.Dify.BaseURL,
				Configured: h.cfg.Dify.APIKey != "",
			},
			Twitter: TwitterStatus{
				BaseURL: tw.BaseURL,
				Post:    tw.ConsumerKey != "" && tw.ConsumerSecret != "" && tw.AccessToken != "" && tw.AccessSecret != "",
				Lookup:  tw.BearerToken != "",
				OAuth2:  tw.OAuth2.ClientID != "" && tw.OAuth2.RedirectURL != "",
			},
		},
	})
}
