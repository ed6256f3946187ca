package handlers

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/grammarpost/grammarpost/pkg/api/models"
	"github.com/grammarpost/grammarpost/pkg/api/response"
	"github.com/grammarpost/grammarpost/pkg/apierror"
	"github.com/grammarpost/grammarpost/pkg/logger"
	"github.com/grammarpost/grammarpost/pkg/metrics"
)

// Authorizer runs the provider OAuth 2.0 flow. *twitter.Authorizer implements it.
type Authorizer interface {
	AuthURL() (string, error)
	Exchange(ctx context.Context, state, code string) (*oauth2.Token, error)
}

// AuthRecorder counts authorization flow steps. *metrics.Manager implements it.
type AuthRecorder interface {
	RecordAuthFlow(stage, outcome string)
}

// AuthHandler handles the tweet authorization endpoints.
type AuthHandler struct {
	auth        Authorizer
	metrics     AuthRecorder
	logger      logger.Logger
	redirectURL string
}

// NewAuthHandler creates a new auth handler. After a completed authorization
// the browser is sent to redirectURL.
func NewAuthHandler(auth Authorizer, rec AuthRecorder, redirectURL string, log logger.Logger) *AuthHandler {
	if rec == nil {
		rec = metrics.NoOpManager()
	}
	if redirectURL == "" {
		redirectURL = "/"
	}
	return &AuthHandler{
		auth:        auth,
		metrics:     rec,
		logger:      log,
		redirectURL: redirectURL,
	}
}

// AuthURL handles GET /api/tweet/auth
// @Summary Start Twitter authorization
// @Description Returns the provider authorization URL for a new OAuth 2.0 attempt
// @Tags auth
// @Produce json
// @Success 200 {object} models.AuthURLResponse "Authorization URL"
// @Failure 500 {object} response.ErrorResponse "Authorization not configured"
// @Router /api/tweet/auth [get]
func (h *AuthHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	url, err := h.auth.AuthURL()
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to generate auth URL", "error", err)
		h.metrics.RecordAuthFlow("authorize", apierror.Kind(err))
		response.Error(w, http.StatusInternalServerError, "Failed to generate Twitter authentication URL", getRequestID(ctx))
		return
	}

	h.metrics.RecordAuthFlow("authorize", metrics.OutcomeSuccess)
	response.JSON(w, http.StatusOK, models.AuthURLResponse{AuthURL: url})
}

// Callback handles GET /api/tweet/callback
// @Summary Complete Twitter authorization
// @Description Exchanges the authorization code and redirects to the form
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "Authorization state"
// @Success 302 "Redirect to the form"
// @Failure 400 {object} response.ErrorResponse "Missing code or unknown state"
// @Failure 500 {object} response.ErrorResponse "Code exchange failed"
// @Router /api/tweet/callback [get]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		if reason := query.Get("error"); reason != "" {
			h.logger.WarnContext(ctx, "Authorization denied", "error", reason, "description", query.Get("error_description"))
		}
		h.metrics.RecordAuthFlow("callback", "validation")
		response.Error(w, http.StatusBadRequest, "No code provided", getRequestID(ctx))
		return
	}

	if _, err := h.auth.Exchange(ctx, query.Get("state"), code); err != nil {
		h.metrics.RecordAuthFlow("callback", apierror.Kind(err))

		var validationErr *apierror.ValidationError
		if errors.As(err, &validationErr) {
			h.logger.WarnContext(ctx, "Rejected authorization callback", "error", err)
			response.Error(w, http.StatusBadRequest, validationErr.Message, getRequestID(ctx))
			return
		}
		h.logger.ErrorContext(ctx, "Failed to authenticate", "error", err)
		response.Error(w, http.StatusInternalServerError, "Failed to authenticate with Twitter", getRequestID(ctx))
		return
	}

	h.metrics.RecordAuthFlow("callback", metrics.OutcomeSuccess)
	http.Redirect(w, r, h.redirectURL, http.StatusFound)
}
