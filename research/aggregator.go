package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stockscope/cache"
	"stockscope/config"
	"stockscope/indicators"
	"stockscope/models"
	"stockscope/observability"
	"stockscope/sentiment"
	"stockscope/services"
)

// placeholderSummary is served when narrative summaries are disabled.
const placeholderSummary = "Narrative summaries are currently unavailable."

// Aggregator fans research requests out across the market-data,
// fundamentals and social providers and merges the results into one
// bundle. Providers are injected as interfaces so tests can swap in
// fakes.
type Aggregator struct {
	market       services.MarketDataProvider
	fundamentals services.FundamentalsProvider
	statements   services.StatementProvider
	stocktwits   services.SocialProvider
	reddit       services.SocialProvider
	summarizer   services.Summarizer

	searchCache *cache.Cache

	historyYears    int
	providerTimeout time.Duration
}

// NewAggregator wires an Aggregator from configured providers. The
// summarizer may be nil, in which case the summary endpoint serves a
// placeholder.
func NewAggregator(cfg *config.Config,
	market services.MarketDataProvider,
	fundamentals services.FundamentalsProvider,
	statements services.StatementProvider,
	stocktwits, reddit services.SocialProvider,
	summarizer services.Summarizer) *Aggregator {
	return &Aggregator{
		market:          market,
		fundamentals:    fundamentals,
		statements:      statements,
		stocktwits:      stocktwits,
		reddit:          reddit,
		summarizer:      summarizer,
		searchCache:     cache.New("search", cfg.CacheTTL(), cfg.Cache.Capacity),
		historyYears:    cfg.Research.HistoryYears,
		providerTimeout: cfg.ProviderTimeout(),
	}
}

// GetStockData assembles the full research bundle for one symbol.
// Overview and price history failures fail the whole request with
// their classification preserved; statement failures degrade to an
// absent financials section.
func (a *Aggregator) GetStockData(ctx context.Context, symbol string) (*models.StockBundle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := services.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	metrics := observability.GetMetrics()
	metrics.RecordResearchRequest("stock_data")
	timer := metrics.NewTimer()

	log := observability.WithRequest(requestID)
	log.Info("assembling research bundle", "symbol", symbol)

	var (
		overview *models.CompanyOverview
		daily    *models.DailyPrice
		history  []models.PriceBar
		income   *models.StatementReports
		balance  *models.StatementReports
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		end := time.Now()
		start := end.AddDate(-a.historyYears, 0, 0)
		bars, err := a.callHistory(gctx, symbol, start, end)
		if err != nil {
			return fmt.Errorf("price history for %s: %w", symbol, err)
		}
		history = bars
		return nil
	})

	g.Go(func() error {
		d, err := a.callDailyPrice(gctx, symbol)
		if err != nil {
			// The latest quote is nice to have; the historical series
			// already carries the last close.
			log.Warn("daily price unavailable", "symbol", symbol, "error", err)
			return nil
		}
		daily = d
		return nil
	})

	g.Go(func() error {
		o, err := a.callOverview(gctx, symbol)
		if err != nil {
			return fmt.Errorf("overview for %s: %w", symbol, err)
		}
		overview = o
		return nil
	})

	// The Alpha Vantage statement calls serialize behind the overview
	// call through the shared rate limiter; running them in their own
	// goroutines just queues them.
	g.Go(func() error {
		inc, err := a.callStatements(gctx, symbol, a.fundamentals.GetIncomeStatement)
		if err != nil {
			log.Warn("income statement unavailable", "symbol", symbol, "error", err)
			return nil
		}
		income = inc
		return nil
	})

	g.Go(func() error {
		bal, err := a.callStatements(gctx, symbol, a.fundamentals.GetBalanceSheet)
		if err != nil {
			log.Warn("balance sheet unavailable", "symbol", symbol, "error", err)
			return nil
		}
		balance = bal
		return nil
	})

	if err := g.Wait(); err != nil {
		code := services.CodeOf(err)
		metrics.RecordResearchError("stock_data", string(code))
		timer.ObserveResearch("stock_data", "error")
		return nil, err
	}

	bundle := &models.StockBundle{
		RequestID:           requestID,
		Symbol:              symbol,
		Overview:            overview,
		DailyPrice:          daily,
		HistoricalPrices:    history,
		TechnicalIndicators: indicators.Compute(history),
		FetchedAt:           time.Now().UTC(),
	}
	if income != nil || balance != nil {
		bundle.Financials = &models.FinancialData{}
		if income != nil {
			bundle.Financials.IncomeStatement = *income
		}
		if balance != nil {
			bundle.Financials.BalanceSheet = *balance
		}
	}

	timer.ObserveResearch("stock_data", "success")
	log.Info("research bundle assembled",
		"symbol", symbol,
		"bars", len(history),
		"duration", timer.Duration())
	return bundle, nil
}

// Search resolves a free-text query to symbol matches, memoized for
// the cache TTL.
func (a *Aggregator) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.NewError(services.ErrInvalidSymbol, "empty search query")
	}

	metrics := observability.GetMetrics()
	metrics.RecordResearchRequest("search")

	if cached, ok := a.searchCache.Get(query); ok {
		return cached.(*models.SearchResponse), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	defer cancel()

	results, err := services.WithCircuitBreaker(callCtx, services.BreakerYahoo, func() ([]models.SearchResult, error) {
		return a.market.Search(callCtx, query)
	})
	if err != nil {
		metrics.RecordResearchError("search", string(services.CodeOf(err)))
		return nil, err
	}

	resp := &models.SearchResponse{Results: results}
	a.searchCache.Put(query, resp)
	return resp, nil
}

// GetFinancialStatements fetches one cadence of balance sheet, income
// statement and cash flow concurrently. Any statement failing fails
// the request with its classification preserved.
func (a *Aggregator) GetFinancialStatements(ctx context.Context, symbol string, quarterly bool) (*models.FinancialStatements, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := services.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordResearchRequest("financials")
	timer := metrics.NewTimer()

	out := &models.FinancialStatements{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h, err := a.callStatementHistory(gctx, symbol, quarterly, a.statements.GetBalanceSheet)
		if err != nil {
			return fmt.Errorf("balance sheet for %s: %w", symbol, err)
		}
		out.BalanceSheet = h
		return nil
	})

	g.Go(func() error {
		h, err := a.callStatementHistory(gctx, symbol, quarterly, a.statements.GetIncomeStatement)
		if err != nil {
			return fmt.Errorf("income statement for %s: %w", symbol, err)
		}
		out.IncomeStatement = h
		return nil
	})

	g.Go(func() error {
		h, err := a.callStatementHistory(gctx, symbol, quarterly, a.statements.GetCashFlow)
		if err != nil {
			return fmt.Errorf("cash flow for %s: %w", symbol, err)
		}
		out.CashFlow = h
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.RecordResearchError("financials", string(services.CodeOf(err)))
		timer.ObserveResearch("financials", "error")
		return nil, err
	}

	timer.ObserveResearch("financials", "success")
	return out, nil
}

// GetSentiment gathers and scores social chatter for one symbol. A
// platform that fails contributes zero posts rather than failing the
// request.
func (a *Aggregator) GetSentiment(ctx context.Context, symbol string) (*models.SentimentSummary, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := services.ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordResearchRequest("sentiment")
	timer := metrics.NewTimer()

	var stocktwitsPosts, redditPosts []models.SocialPost

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := a.callSocial(gctx, services.BreakerStockTwits, a.stocktwits, symbol)
		if err != nil {
			observability.Warn("stocktwits feed unavailable", "symbol", symbol, "error", err)
			return nil
		}
		stocktwitsPosts = posts
		return nil
	})

	g.Go(func() error {
		posts, err := a.callSocial(gctx, services.BreakerReddit, a.reddit, symbol)
		if err != nil {
			observability.Warn("reddit feed unavailable", "symbol", symbol, "error", err)
			return nil
		}
		redditPosts = posts
		return nil
	})

	// Social goroutines swallow their errors, so Wait cannot fail.
	_ = g.Wait()

	posts := make([]models.SocialPost, 0, len(stocktwitsPosts)+len(redditPosts))
	posts = append(posts, stocktwitsPosts...)
	posts = append(posts, redditPosts...)
	posts = sentiment.ScorePosts(posts)

	summary := sentiment.Aggregate(posts)
	timer.ObserveResearch("sentiment", "success")
	return &summary, nil
}

// Summarize produces a narrative summary from the assembled bundle.
// With summaries disabled it returns a fixed placeholder without
// touching the providers.
func (a *Aggregator) Summarize(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := services.ValidateSymbol(symbol); err != nil {
		return "", err
	}

	if a.summarizer == nil {
		return placeholderSummary, nil
	}

	bundle, err := a.GetStockData(ctx, symbol)
	if err != nil {
		return "", err
	}

	metrics := observability.GetMetrics()
	metrics.RecordResearchRequest("summary")

	text, err := a.summarizer.InvokeWithPrompt(ctx, summarySystemPrompt, buildSummaryPrompt(bundle))
	if err != nil {
		metrics.RecordResearchError("summary", string(services.CodeOf(err)))
		return "", err
	}
	return text, nil
}

func (a *Aggregator) callHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	defer cancel()
	return services.WithCircuitBreaker(callCtx, services.BreakerYahoo, func() ([]models.PriceBar, error) {
		return a.market.GetPriceHistory(callCtx, symbol, start, end)
	})
}

func (a *Aggregator) callDailyPrice(ctx context.Context, symbol string) (*models.DailyPrice, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	defer cancel()
	return services.WithCircuitBreaker(callCtx, services.BreakerYahoo, func() (*models.DailyPrice, error) {
		return a.market.GetDailyPrice(callCtx, symbol)
	})
}

func (a *Aggregator) callOverview(ctx context.Context, symbol string) (*models.CompanyOverview, error) {
	// Rate-limited calls can queue for several spacing windows, so the
	// deadline covers the queue wait as well as the call itself.
	callCtx, cancel := context.WithTimeout(ctx, 4*a.providerTimeout)
	defer cancel()
	return services.WithCircuitBreaker(callCtx, services.BreakerAlphaVantage, func() (*models.CompanyOverview, error) {
		return a.fundamentals.GetCompanyOverview(callCtx, symbol)
	})
}

func (a *Aggregator) callStatements(ctx context.Context, symbol string, fetch func(context.Context, string) (*models.StatementReports, error)) (*models.StatementReports, error) {
	callCtx, cancel := context.WithTimeout(ctx, 4*a.providerTimeout)
	defer cancel()
	return services.WithCircuitBreaker(callCtx, services.BreakerAlphaVantage, func() (*models.StatementReports, error) {
		return fetch(callCtx, symbol)
	})
}

func (a *Aggregator) callStatementHistory(ctx context.Context, symbol string, quarterly bool, fetch func(context.Context, string, bool) (models.StatementHistory, error)) (models.StatementHistory, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	defer cancel()
	return services.WithCircuitBreaker(callCtx, services.BreakerYahoo, func() (models.StatementHistory, error) {
		return fetch(callCtx, symbol, quarterly)
	})
}

func (a *Aggregator) callSocial(ctx context.Context, breaker string, provider services.SocialProvider, symbol string) ([]models.SocialPost, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.providerTimeout)
	defer cancel()
	return services.WithCircuitBreaker(callCtx, breaker, func() ([]models.SocialPost, error) {
		return provider.GetPosts(callCtx, symbol)
	})
}
