package services

import (
	"context"
	"time"

	"stockscope/models"
)

// MarketDataProvider serves price series, latest quotes and symbol
// search. Implemented by YahooService.
type MarketDataProvider interface {
	GetPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
	GetDailyPrice(ctx context.Context, symbol string) (*models.DailyPrice, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// FundamentalsProvider serves company fundamentals and financial
// statements. Implemented by AlphaVantageService.
type FundamentalsProvider interface {
	GetCompanyOverview(ctx context.Context, symbol string) (*models.CompanyOverview, error)
	GetIncomeStatement(ctx context.Context, symbol string) (*models.StatementReports, error)
	GetBalanceSheet(ctx context.Context, symbol string) (*models.StatementReports, error)
}

// StatementProvider serves normalized statement histories, one cadence
// per call. Implemented by YahooService over the quoteSummary modules.
type StatementProvider interface {
	GetBalanceSheet(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error)
	GetIncomeStatement(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error)
	GetCashFlow(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error)
}

// SocialProvider serves recent posts mentioning a symbol. Implemented
// by StockTwitsService and RedditService.
type SocialProvider interface {
	GetPosts(ctx context.Context, symbol string) ([]models.SocialPost, error)
}

// Summarizer produces narrative text from a prompt. Implemented by
// BedrockService.
type Summarizer interface {
	InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Compile-time interface checks
var (
	_ MarketDataProvider   = (*YahooService)(nil)
	_ StatementProvider    = (*YahooService)(nil)
	_ FundamentalsProvider = (*AlphaVantageService)(nil)
	_ SocialProvider       = (*StockTwitsService)(nil)
	_ SocialProvider       = (*RedditService)(nil)
	_ Summarizer           = (*BedrockService)(nil)
)
