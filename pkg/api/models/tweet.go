package models

import "time"

// TweetRequest is the body of the post-tweet endpoint. Length is checked by
// the handler against the configured limit.
type TweetRequest struct {
	// Text is the tweet content.
	Text string `json:"text" example:"I have an apple."`
}

// TweetResponse is returned when a tweet was posted.
type TweetResponse struct {
	Success bool  `json:"success" example:"true"`
	Tweet   Tweet `json:"tweet"`
}

// Tweet is a posted tweet.
type Tweet struct {
	ID                  string   `json:"id" example:"1445880548472328192"`
	Text                string   `json:"text" example:"I have an apple."`
	EditHistoryTweetIDs []string `json:"edit_history_tweet_ids,omitempty"`
}

// TweetLookupResponse is returned by the tweet lookup endpoint.
type TweetLookupResponse struct {
	Tweet    TweetDetail `json:"tweet"`
	Includes Includes    `json:"includes"`
}

// TweetDetail is a tweet with its author id and engagement counters.
type TweetDetail struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	AuthorID      string         `json:"authorId,omitempty"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"`
	PublicMetrics *PublicMetrics `json:"publicMetrics,omitempty"`
}

// PublicMetrics holds engagement counters.
type PublicMetrics struct {
	RetweetCount int `json:"retweetCount"`
	ReplyCount   int `json:"replyCount"`
	LikeCount    int `json:"likeCount"`
	QuoteCount   int `json:"quoteCount"`
}

// Includes holds expanded objects referenced by a tweet.
type Includes struct {
	Users []User `json:"users"`
}

// User is a tweet author.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// AuthURLResponse carries the provider authorization URL.
type AuthURLResponse struct {
	AuthURL string `json:"authUrl" example:"https://twitter.com/i/oauth2/authorize?response_type=code"`
}
