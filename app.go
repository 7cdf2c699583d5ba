package main

import (
	"context"

	"stockscope/config"
	"stockscope/observability"
	"stockscope/research"
	"stockscope/services"
)

// App wires the configured providers into the research aggregator.
type App struct {
	cfg        *config.Config
	aggregator *research.Aggregator
}

// NewApp builds the provider stack and the aggregator. Bedrock is
// optional: with summaries disabled, or when the AWS client cannot be
// constructed, the summary endpoint serves a placeholder instead of
// failing startup.
func NewApp(ctx context.Context, cfg *config.Config) *App {
	limiter := services.NewRateLimiter(cfg.AlphaVantageDelay())

	yahoo := services.NewYahooService()
	alphaVantage := services.NewAlphaVantageService(cfg.AlphaVantage.APIKey, limiter)
	stocktwits := services.NewStockTwitsService()
	reddit := services.NewRedditService()

	var summarizer services.Summarizer
	if cfg.HasBedrock() {
		bedrock, err := services.NewBedrockService(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens)
		if err != nil {
			observability.Warn("bedrock unavailable, summaries disabled", "error", err)
		} else {
			summarizer = bedrock
		}
	} else {
		observability.Info("narrative summaries disabled by configuration")
	}

	return &App{
		cfg:        cfg,
		aggregator: research.NewAggregator(cfg, yahoo, alphaVantage, yahoo, stocktwits, reddit, summarizer),
	}
}
