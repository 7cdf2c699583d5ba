package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"stockscope/models"
	"stockscope/observability"
)

// StockTwitsService handles communication with the public StockTwits
// streams API. StockTwits labels messages itself; that label is kept
// and only unlabeled posts fall through to lexicon scoring.
type StockTwitsService struct {
	httpClient *http.Client
	baseURL    string
}

// NewStockTwitsService creates a new StockTwitsService instance.
func NewStockTwitsService() *StockTwitsService {
	return &StockTwitsService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.stocktwits.com/api/2/streams/symbol",
	}
}

// streamResponse is the wire shape of the symbol stream endpoint.
type streamResponse struct {
	Messages []struct {
		ID        int64  `json:"id"`
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
		User      struct {
			Username string `json:"username"`
		} `json:"user"`
		Likes struct {
			Total int `json:"total"`
		} `json:"likes"`
		Entities struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

// GetPosts fetches the recent message stream for a symbol and
// normalizes it. An unknown ticker surfaces as INVALID_SYMBOL.
func (s *StockTwitsService) GetPosts(ctx context.Context, symbol string) ([]models.SocialPost, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("stocktwits", "stream")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("stocktwits", "stream")

	reqURL := s.baseURL + "/" + url.PathEscape(symbol) + ".json"

	var resp streamResponse
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		return s.getJSON(ctx, reqURL, &resp)
	})
	if err != nil {
		metrics.RecordExternalAPIError("stocktwits", "stream", string(CodeOf(err)))
		return nil, EnsureCode(err, ErrNetwork, "stocktwits call failed")
	}

	posts := make([]models.SocialPost, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		post := models.SocialPost{
			Platform:  models.PlatformStockTwits,
			Content:   msg.Body,
			Sentiment: models.SentimentNeutral,
			Timestamp: parseStockTwitsTime(msg.CreatedAt),
			Author:    msg.User.Username,
			Likes:     msg.Likes.Total,
			URL:       fmt.Sprintf("https://stocktwits.com/message/%d", msg.ID),
		}
		if msg.Entities.Sentiment != nil {
			switch msg.Entities.Sentiment.Basic {
			case "Bullish":
				post.Sentiment = models.SentimentPositive
			case "Bearish":
				post.Sentiment = models.SentimentNegative
			}
		}
		posts = append(posts, post)
	}

	metrics.RecordSentimentPosts(string(models.PlatformStockTwits), len(posts))
	return posts, nil
}

func (s *StockTwitsService) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewError(ErrInvalidSymbol, "stocktwits does not track this symbol")
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("stocktwits returned status 429")
	case resp.StatusCode != http.StatusOK:
		return NewError(ErrAPI, fmt.Sprintf("stocktwits returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return WrapError(ErrDataFormat, "failed to decode stocktwits response", err)
	}
	return nil
}

// parseStockTwitsTime converts the stream's RFC3339-ish timestamp to
// epoch milliseconds, zero when unparseable.
func parseStockTwitsTime(v string) int64 {
	t, err := time.Parse("2006-01-02T15:04:05Z", v)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
