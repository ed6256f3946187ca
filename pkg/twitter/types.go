package twitter

import "time"

// Tweet is a published status update as returned by the provider.
type Tweet struct {
	ID                  string   `json:"id"`
	Text                string   `json:"text"`
	EditHistoryTweetIDs []string `json:"edit_history_tweet_ids,omitempty"`
}

// TweetDetail is a tweet returned by a lookup with extra fields.
type TweetDetail struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	AuthorID      string         `json:"author_id,omitempty"`
	CreatedAt     *time.Time     `json:"created_at,omitempty"`
	PublicMetrics *PublicMetrics `json:"public_metrics,omitempty"`
}

// PublicMetrics are the engagement counters of a tweet.
type PublicMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// User is an expanded tweet author.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Includes holds objects expanded by a lookup.
type Includes struct {
	Users []User `json:"users,omitempty"`
}

// LookupResult is the outcome of a tweet lookup.
type LookupResult struct {
	Tweet    TweetDetail `json:"tweet"`
	Includes Includes    `json:"includes"`
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data *Tweet `json:"data"`
}

type lookupResponse struct {
	Data     *TweetDetail `json:"data"`
	Includes Includes     `json:"includes"`
	Errors   []APIError   `json:"errors"`
}
