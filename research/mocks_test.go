package research

import (
	"context"
	"time"

	"stockscope/models"

	"github.com/shopspring/decimal"
)

type mockMarketData struct {
	bars        []models.PriceBar
	daily       *models.DailyPrice
	results     []models.SearchResult
	historyErr  error
	dailyErr    error
	searchErr   error
	searchCalls int
}

func (m *mockMarketData) GetPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.bars, nil
}

func (m *mockMarketData) GetDailyPrice(ctx context.Context, symbol string) (*models.DailyPrice, error) {
	if m.dailyErr != nil {
		return nil, m.dailyErr
	}
	return m.daily, nil
}

func (m *mockMarketData) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

type mockFundamentals struct {
	overview    *models.CompanyOverview
	income      *models.StatementReports
	balance     *models.StatementReports
	overviewErr error
	incomeErr   error
	balanceErr  error
	lastSymbol  string
}

func (m *mockFundamentals) GetCompanyOverview(ctx context.Context, symbol string) (*models.CompanyOverview, error) {
	m.lastSymbol = symbol
	if m.overviewErr != nil {
		return nil, m.overviewErr
	}
	return m.overview, nil
}

func (m *mockFundamentals) GetIncomeStatement(ctx context.Context, symbol string) (*models.StatementReports, error) {
	if m.incomeErr != nil {
		return nil, m.incomeErr
	}
	return m.income, nil
}

func (m *mockFundamentals) GetBalanceSheet(ctx context.Context, symbol string) (*models.StatementReports, error) {
	if m.balanceErr != nil {
		return nil, m.balanceErr
	}
	return m.balance, nil
}

type mockStatements struct {
	balance       models.StatementHistory
	income        models.StatementHistory
	cashFlow      models.StatementHistory
	balanceErr    error
	incomeErr     error
	cashFlowErr   error
	lastQuarterly bool
	lastSymbol    string
}

func (m *mockStatements) GetBalanceSheet(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error) {
	m.lastSymbol = symbol
	m.lastQuarterly = quarterly
	if m.balanceErr != nil {
		return nil, m.balanceErr
	}
	return m.balance, nil
}

func (m *mockStatements) GetIncomeStatement(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error) {
	if m.incomeErr != nil {
		return nil, m.incomeErr
	}
	return m.income, nil
}

func (m *mockStatements) GetCashFlow(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error) {
	if m.cashFlowErr != nil {
		return nil, m.cashFlowErr
	}
	return m.cashFlow, nil
}

type mockSocial struct {
	posts []models.SocialPost
	err   error
}

func (m *mockSocial) GetPosts(ctx context.Context, symbol string) ([]models.SocialPost, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.posts, nil
}

type mockSummarizer struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockSummarizer) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.lastPrompt = userPrompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// makeBars builds a gently rising daily series ending today.
func makeBars(n int) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	start := time.Now().AddDate(0, 0, -n)
	for i := range bars {
		price := 100 + float64(i)*0.1
		bars[i] = models.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1_000_000,
		}
	}
	return bars
}

func makeOverview(symbol string) *models.CompanyOverview {
	pe := 25.0
	return &models.CompanyOverview{
		Symbol:    symbol,
		Name:      symbol + " Inc",
		Exchange:  "NASDAQ",
		Sector:    "Technology",
		Industry:  "Software",
		MarketCap: decimal.NewFromInt(1_000_000_000),
		PERatio:   &pe,
	}
}
