package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarpost/grammarpost/pkg/apierror"
	"github.com/grammarpost/grammarpost/pkg/twitter"
)

func TestTweetHandler_PostTweet_Success(t *testing.T) {
	client := &fakeTweetClient{tweet: &twitter.Tweet{ID: "1445880548472328192", Text: "I have an apple."}}
	h := NewTweetHandler(client, 0, testLogger())

	w := postJSON(t, h.PostTweet, "/api/tweet", `{"text":"I have an apple."}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"tweet":{"id":"1445880548472328192","text":"I have an apple."}}`, w.Body.String())
	assert.Equal(t, []string{"I have an apple."}, client.posted)
}

func TestTweetHandler_PostTweet_Length(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode int
	}{
		{"280 ascii", strings.Repeat("a", 280), http.StatusOK},
		{"281 ascii", strings.Repeat("a", 281), http.StatusBadRequest},
		{"280 multibyte", strings.Repeat("é", 280), http.StatusOK},
		{"281 multibyte", strings.Repeat("é", 281), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeTweetClient{tweet: &twitter.Tweet{ID: "1"}}
			h := NewTweetHandler(client, 280, testLogger())

			body, err := json.Marshal(map[string]string{"text": tt.text})
			require.NoError(t, err)
			w := postJSON(t, h.PostTweet, "/api/tweet", string(body))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusBadRequest {
				assert.Equal(t, "Text exceeds Twitter's 280 character limit", decodeBody(t, w)["error"])
				assert.Empty(t, client.posted)
			} else {
				assert.Len(t, client.posted, 1)
			}
		})
	}
}

func TestTweetHandler_PostTweet_BadInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `not json`, "Invalid request body"},
		{"missing text", `{}`, "Text is required"},
		{"empty text", `{"text":""}`, "Text is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeTweetClient{}
			h := NewTweetHandler(client, 280, testLogger())

			w := postJSON(t, h.PostTweet, "/api/tweet", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, decodeBody(t, w)["error"])
			assert.Empty(t, client.posted)
		})
	}
}

func TestTweetHandler_PostTweet_ProviderErrors(t *testing.T) {
	original := errors.New("Request failed with code 403 - duplicate content")
	forbidden := &apierror.ProviderDomainError{
		Provider: "twitter",
		Code:     http.StatusForbidden,
		Message:  "Twitter API rejected the request: Forbidden. This might be due to duplicate content or rate limits.",
		Data:     json.RawMessage(`{"title":"Forbidden","status":403}`),
		Original: original,
	}
	unauthorized := &apierror.ProviderDomainError{
		Provider: "twitter",
		Code:     http.StatusUnauthorized,
		Message:  "Twitter API authentication failed. Please check your credentials.",
		Original: errors.New("Request failed with code 401 - Unauthorized"),
	}

	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantDetails string
	}{
		{
			name:        "forbidden",
			err:         forbidden,
			wantCode:    http.StatusForbidden,
			wantDetails: `{"code":403,"data":{"title":"Forbidden","status":403},"originalError":{"message":"Request failed with code 403 - duplicate content"}}`,
		},
		{
			name:        "unauthorized",
			err:         unauthorized,
			wantCode:    http.StatusUnauthorized,
			wantDetails: `{"code":401,"originalError":{"message":"Request failed with code 401 - Unauthorized"}}`,
		},
		{
			name:        "missing credentials",
			err:         &apierror.ConfigurationError{Message: "Twitter OAuth credentials are missing in environment variables"},
			wantCode:    http.StatusInternalServerError,
			wantDetails: `{}`,
		},
		{
			name:        "transport",
			err:         errors.New("call twitter api: connection refused"),
			wantCode:    http.StatusInternalServerError,
			wantDetails: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTweetHandler(&fakeTweetClient{err: tt.err}, 280, testLogger())

			w := postJSON(t, h.PostTweet, "/api/tweet", `{"text":"hello"}`)

			assert.Equal(t, tt.wantCode, w.Code)

			var body struct {
				Error     string          `json:"error"`
				Timestamp string          `json:"timestamp"`
				Details   json.RawMessage `json:"details"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body.Error)
			assert.JSONEq(t, tt.wantDetails, string(body.Details))

			_, err := time.Parse(time.RFC3339, body.Timestamp)
			assert.NoError(t, err, "timestamp must be RFC 3339")
		})
	}
}

func TestTweetHandler_GetTweet(t *testing.T) {
	created := time.Date(2006, 3, 21, 20, 50, 14, 0, time.UTC)
	client := &fakeTweetClient{lookup: &twitter.LookupResult{
		Tweet: twitter.TweetDetail{
			ID:            "20",
			Text:          "just setting up my twttr",
			AuthorID:      "12",
			CreatedAt:     &created,
			PublicMetrics: &twitter.PublicMetrics{LikeCount: 3},
		},
		Includes: twitter.Includes{Users: []twitter.User{{ID: "12", Name: "jack", Username: "jack"}}},
	}}
	h := NewTweetHandler(client, 280, testLogger())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tweet/20", nil), "id", "20")
	w := httptest.NewRecorder()
	h.GetTweet(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"tweet": {
			"id": "20",
			"text": "just setting up my twttr",
			"authorId": "12",
			"createdAt": "2006-03-21T20:50:14Z",
			"publicMetrics": {"retweetCount": 0, "replyCount": 0, "likeCount": 3, "quoteCount": 0}
		},
		"includes": {"users": [{"id": "12", "name": "jack", "username": "jack"}]}
	}`, w.Body.String())
	assert.Equal(t, []string{"20"}, client.lookups)
}

func TestTweetHandler_GetTweet_InvalidID(t *testing.T) {
	client := &fakeTweetClient{}
	h := NewTweetHandler(client, 280, testLogger())

	for _, id := range []string{"", "abc", "12345678901234567890"} {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tweet/x", nil), "id", id)
		w := httptest.NewRecorder()
		h.GetTweet(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
	assert.Empty(t, client.lookups)
}

func TestTweetHandler_GetTweet_NotFound(t *testing.T) {
	client := &fakeTweetClient{err: &apierror.ProviderDomainError{
		Provider: "twitter",
		Code:     http.StatusNotFound,
		Message:  "Twitter API Error: Request failed with code 404 - Could not find tweet",
		Original: errors.New("Request failed with code 404 - Could not find tweet"),
	}}
	h := NewTweetHandler(client, 280, testLogger())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/tweet/1", nil), "id", "1")
	w := httptest.NewRecorder()
	h.GetTweet(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(404), decodeBody(t, w)["details"].(map[string]any)["code"])
}
