package models

// Sentiment classifies the polarity of a social post.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Platform identifies the social feed a post came from.
type Platform string

const (
	PlatformStockTwits Platform = "stocktwits"
	PlatformReddit     Platform = "reddit"
)

// SocialPost is one normalized social-media post. Immutable once scored.
type SocialPost struct {
	Platform  Platform  `json:"platform"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment"`
	Timestamp int64     `json:"timestamp"` // epoch milliseconds
	Author    string    `json:"author"`
	Likes     int       `json:"likes"`
	URL       string    `json:"url,omitempty"`
}

// SentimentDistribution counts posts per sentiment class.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// SentimentSummary is the aggregated sentiment for one symbol. Derived
// per request, never persisted.
type SentimentSummary struct {
	Overall      float64               `json:"overall"` // in [-1, 1]
	Distribution SentimentDistribution `json:"distribution"`
	Total        int                   `json:"total"`
	Posts        []SocialPost          `json:"posts"` // 10 most recent
}
