package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockscope/models"
	"stockscope/observability"
)

// redditSubreddits are the communities searched for ticker chatter.
var redditSubreddits = []string{"stocks", "wallstreetbets"}

// RedditService handles communication with Reddit's public JSON search
// endpoint. Posts arrive unlabeled; sentiment is filled in later by the
// lexicon scorer.
type RedditService struct {
	httpClient *http.Client
	baseURL    string
}

// NewRedditService creates a new RedditService instance.
func NewRedditService() *RedditService {
	return &RedditService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.reddit.com",
	}
}

// listingResponse is the wire shape of a subreddit search listing.
type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Author     string  `json:"author"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
				Permalink  string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// GetPosts searches the tracked subreddits for the symbol and merges
// the results. A subreddit that fails is skipped with a warning; the
// call errors only when every subreddit fails.
func (s *RedditService) GetPosts(ctx context.Context, symbol string) ([]models.SocialPost, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	var posts []models.SocialPost
	var lastErr error

	for _, sub := range redditSubreddits {
		metrics.RecordExternalAPIRequest("reddit", sub)
		timer := metrics.NewTimer()

		subPosts, err := s.searchSubreddit(ctx, sub, symbol)
		timer.ObserveExternalAPI("reddit", sub)

		if err != nil {
			metrics.RecordExternalAPIError("reddit", sub, string(CodeOf(err)))
			observability.Warn("subreddit search failed",
				"subreddit", sub,
				"symbol", symbol,
				"error", err)
			lastErr = err
			continue
		}
		posts = append(posts, subPosts...)
	}

	if len(posts) == 0 && lastErr != nil {
		return nil, EnsureCode(lastErr, ErrNetwork, "reddit search failed")
	}

	metrics.RecordSentimentPosts(string(models.PlatformReddit), len(posts))
	return posts, nil
}

func (s *RedditService) searchSubreddit(ctx context.Context, subreddit, symbol string) ([]models.SocialPost, error) {
	params := url.Values{}
	params.Set("q", symbol)
	params.Set("restrict_sr", "1")
	params.Set("sort", "new")
	params.Set("limit", "25")

	reqURL := fmt.Sprintf("%s/r/%s/search.json?%s", s.baseURL, subreddit, params.Encode())

	var resp listingResponse
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		return s.getJSON(ctx, reqURL, &resp)
	})
	if err != nil {
		return nil, err
	}

	posts := make([]models.SocialPost, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		d := child.Data
		content := d.Title
		if d.Selftext != "" {
			content = content + " " + d.Selftext
		}
		posts = append(posts, models.SocialPost{
			Platform:  models.PlatformReddit,
			Content:   strings.TrimSpace(content),
			Sentiment: models.SentimentNeutral,
			Timestamp: int64(d.CreatedUTC * 1000),
			Author:    d.Author,
			Likes:     d.Score,
			URL:       "https://www.reddit.com" + d.Permalink,
		})
	}
	return posts, nil
}

func (s *RedditService) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Reddit rejects default Go user agents.
	req.Header.Set("User-Agent", "stockscope/1.0 (research dashboard)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("reddit returned status 429")
	case resp.StatusCode != http.StatusOK:
		return NewError(ErrAPI, fmt.Sprintf("reddit returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return WrapError(ErrDataFormat, "failed to decode reddit response", err)
	}
	return nil
}
