package handlers

import (
	"context"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/grammarpost/grammarpost/pkg/api/models"
	"github.com/grammarpost/grammarpost/pkg/api/response"
	"github.com/grammarpost/grammarpost/pkg/logger"
	"github.com/grammarpost/grammarpost/pkg/twitter"
)

// DefaultMaxTweetLength is the provider's tweet length limit in characters.
const DefaultMaxTweetLength = 280

// TweetClient posts and looks up tweets. *twitter.Client implements it.
type TweetClient interface {
	CreateTweet(ctx context.Context, text string) (*twitter.Tweet, error)
	LookupTweet(ctx context.Context, id string) (*twitter.LookupResult, error)
}

// TweetHandler handles the tweet endpoints.
type TweetHandler struct {
	client    TweetClient
	maxLength int
	logger    logger.Logger
	validator *validator.Validate
}

// NewTweetHandler creates a new tweet handler. A maxLength below one uses
// DefaultMaxTweetLength.
func NewTweetHandler(client TweetClient, maxLength int, log logger.Logger) *TweetHandler {
	if maxLength < 1 {
		maxLength = DefaultMaxTweetLength
	}
	return &TweetHandler{
		client:    client,
		maxLength: maxLength,
		logger:    log,
		validator: validator.New(),
	}
}

// PostTweet handles POST /api/tweet
// @Summary Post a tweet
// @Description Publishes the text as a status update with the configured account
// @Tags tweets
// @Accept json
// @Produce json
// @Param request body models.TweetRequest true "Tweet text"
// @Success 200 {object} models.TweetResponse "Tweet posted"
// @Failure 400 {object} response.ErrorResponse "Missing or too long text"
// @Failure 401 {object} response.ProviderErrorResponse "Provider rejected the credentials"
// @Failure 403 {object} response.ProviderErrorResponse "Provider rejected the request"
// @Failure 500 {object} response.ProviderErrorResponse "Provider failure"
// @Router /api/tweet [post]
func (h *TweetHandler) PostTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.TweetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request", "error", err)
		writeDecodeError(w, r, err)
		return
	}

	if req.Text == "" {
		response.Error(w, http.StatusBadRequest, "Text is required", getRequestID(ctx))
		return
	}
	if n := utf8.RuneCountInString(req.Text); n > h.maxLength {
		response.Error(w, http.StatusBadRequest,
			fmt.Sprintf("Text exceeds Twitter's %d character limit", h.maxLength), getRequestID(ctx))
		return
	}

	tweet, err := h.client.CreateTweet(ctx, req.Text)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to post tweet", "error", err, "request_id", getRequestID(ctx))
		response.ProviderError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.TweetResponse{
		Success: true,
		Tweet: models.Tweet{
			ID:                  tweet.ID,
			Text:                tweet.Text,
			EditHistoryTweetIDs: tweet.EditHistoryTweetIDs,
		},
	})
}

// GetTweet handles GET /api/tweet/{id}
// @Summary Look up a tweet
// @Description Fetches a tweet with its author using the app bearer token
// @Tags tweets
// @Produce json
// @Param id path string true "Tweet ID"
// @Success 200 {object} models.TweetLookupResponse "Tweet"
// @Failure 400 {object} response.ErrorResponse "Invalid tweet ID"
// @Failure 404 {object} response.ProviderErrorResponse "Tweet not found"
// @Failure 500 {object} response.ProviderErrorResponse "Provider failure"
// @Router /api/tweet/{id} [get]
func (h *TweetHandler) GetTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.validator.Var(id, "required,numeric,max=19"); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid tweet ID", getRequestID(ctx))
		return
	}

	result, err := h.client.LookupTweet(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to look up tweet", "id", id, "error", err)
		response.ProviderError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, lookupResponse(result))
}

func lookupResponse(result *twitter.LookupResult) models.TweetLookupResponse {
	resp := models.TweetLookupResponse{
		Tweet: models.TweetDetail{
			ID:        result.Tweet.ID,
			Text:      result.Tweet.Text,
			AuthorID:  result.Tweet.AuthorID,
			CreatedAt: result.Tweet.CreatedAt,
		},
		Includes: models.Includes{Users: []models.User{}},
	}
	if pm := result.Tweet.PublicMetrics; pm != nil {
		resp.Tweet.PublicMetrics = &models.PublicMetrics{
			RetweetCount: pm.RetweetCount,
			ReplyCount:   pm.ReplyCount,
			LikeCount:    pm.LikeCount,
			QuoteCount:   pm.QuoteCount,
		}
	}
	for _, u := range result.Includes.Users {
		resp.Includes.Users = append(resp.Includes.Users, models.User{
			ID:       u.ID,
			Name:     u.Name,
			Username: u.Username,
		})
	}
	return resp
}
