package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockscope/models"
	"stockscope/observability"

	"github.com/shopspring/decimal"
)

// AlphaVantageService handles communication with the Alpha Vantage API.
// The free tier allows 5 calls per minute, so every call goes through
// the shared rate limiter, which also absorbs "Note" quota responses.
type AlphaVantageService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
}

// NewAlphaVantageService creates a new AlphaVantageService instance.
// The limiter is injected so callers sharing one quota share one
// instance, and tests can pass a limiter with no delay.
func NewAlphaVantageService(apiKey string, limiter *RateLimiter) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		baseURL:    "https://www.alphavantage.co/query",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
	}
}

// overviewResponse is the wire shape of the OVERVIEW function. Every
// field arrives as a string; numeric fields may be "None" or "-".
type overviewResponse struct {
	Symbol                     string `json:"Symbol"`
	Name                       string `json:"Name"`
	Description                string `json:"Description"`
	Exchange                   string `json:"Exchange"`
	Sector                     string `json:"Sector"`
	Industry                   string `json:"Industry"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	PERatio                    string `json:"PERatio"`
	EPS                        string `json:"EPS"`
	DividendYield              string `json:"DividendYield"`
	ProfitMargin               string `json:"ProfitMargin"`
	Beta                       string `json:"Beta"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
}

// GetCompanyOverview fetches fundamentals for a symbol. An empty object
// from the API means Alpha Vantage does not know the ticker.
func (s *AlphaVantageService) GetCompanyOverview(ctx context.Context, symbol string) (*models.CompanyOverview, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	var resp overviewResponse
	if err := s.call(ctx, "OVERVIEW", symbol, &resp); err != nil {
		return nil, err
	}

	if resp.Symbol == "" {
		return nil, NewError(ErrInvalidSymbol,
			fmt.Sprintf("alpha vantage returned no overview for %s", symbol))
	}

	return &models.CompanyOverview{
		Symbol:                     resp.Symbol,
		Name:                       resp.Name,
		Description:                resp.Description,
		Exchange:                   resp.Exchange,
		Sector:                     resp.Sector,
		Industry:                   resp.Industry,
		MarketCap:                  parseDecimal(resp.MarketCapitalization),
		PERatio:                    parseOptionalFloat(resp.PERatio),
		EPS:                        parseOptionalFloat(resp.EPS),
		DividendYield:              parseOptionalFloat(resp.DividendYield),
		ProfitMargin:               parseOptionalFloat(resp.ProfitMargin),
		Beta:                       parseOptionalFloat(resp.Beta),
		QuarterlyEarningsGrowthYOY: parseOptionalFloat(resp.QuarterlyEarningsGrowthYOY),
		QuarterlyRevenueGrowthYOY:  parseOptionalFloat(resp.QuarterlyRevenueGrowthYOY),
	}, nil
}

// statementReport is one reporting period as Alpha Vantage serializes
// it: all values are strings, absent items are "None".
type statementReport struct {
	FiscalDateEnding       string `json:"fiscalDateEnding"`
	TotalRevenue           string `json:"totalRevenue"`
	GrossProfit            string `json:"grossProfit"`
	OperatingIncome        string `json:"operatingIncome"`
	NetIncome              string `json:"netIncome"`
	EBITDA                 string `json:"ebitda"`
	TotalAssets            string `json:"totalAssets"`
	TotalLiabilities       string `json:"totalLiabilities"`
	TotalShareholderEquity string `json:"totalShareholderEquity"`
}

type statementResponse struct {
	Symbol           string            `json:"symbol"`
	AnnualReports    []statementReport `json:"annualReports"`
	QuarterlyReports []statementReport `json:"quarterlyReports"`
}

// GetIncomeStatement fetches annual and quarterly income statements.
func (s *AlphaVantageService) GetIncomeStatement(ctx context.Context, symbol string) (*models.StatementReports, error) {
	return s.getStatements(ctx, "INCOME_STATEMENT", symbol)
}

// GetBalanceSheet fetches annual and quarterly balance sheets.
func (s *AlphaVantageService) GetBalanceSheet(ctx context.Context, symbol string) (*models.StatementReports, error) {
	return s.getStatements(ctx, "BALANCE_SHEET", symbol)
}

func (s *AlphaVantageService) getStatements(ctx context.Context, function, symbol string) (*models.StatementReports, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	var resp statementResponse
	if err := s.call(ctx, function, symbol, &resp); err != nil {
		return nil, err
	}

	if len(resp.AnnualReports) == 0 && len(resp.QuarterlyReports) == 0 {
		return nil, NewError(ErrDataFormat,
			fmt.Sprintf("alpha vantage returned no %s reports for %s", strings.ToLower(function), symbol))
	}

	return &models.StatementReports{
		AnnualReports:    convertReports(resp.AnnualReports, models.PeriodAnnual),
		QuarterlyReports: convertReports(resp.QuarterlyReports, models.PeriodQuarterly),
	}, nil
}

func convertReports(reports []statementReport, period models.StatementPeriod) models.StatementHistory {
	history := make(models.StatementHistory, 0, len(reports))
	for _, r := range reports {
		end, err := time.Parse("2006-01-02", r.FiscalDateEnding)
		if err != nil {
			continue
		}
		history = append(history, models.FinancialStatement{
			FiscalDateEnding: end,
			Period:           period,
			Revenue:          parseNullDecimal(r.TotalRevenue),
			GrossProfit:      parseNullDecimal(r.GrossProfit),
			OperatingIncome:  parseNullDecimal(r.OperatingIncome),
			NetIncome:        parseNullDecimal(r.NetIncome),
			EBITDA:           parseNullDecimal(r.EBITDA),
			TotalAssets:      parseNullDecimal(r.TotalAssets),
			TotalLiabilities: parseNullDecimal(r.TotalLiabilities),
			TotalEquity:      parseNullDecimal(r.TotalShareholderEquity),
		})
	}
	return history
}

// call performs one rate-limited, retried request and inspects the
// payload for Alpha Vantage's in-band error signals before decoding
// into out.
func (s *AlphaVantageService) call(ctx context.Context, function, symbol string, out any) error {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("alphavantage", function)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("alphavantage", function)

	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", s.apiKey)
	reqURL := s.baseURL + "?" + params.Encode()

	err := s.limiter.Do(ctx, func() error {
		return WithRetry(ctx, DefaultRetryConfig, func() error {
			return s.getJSON(ctx, reqURL, out)
		})
	})
	if err != nil {
		metrics.RecordExternalAPIError("alphavantage", function, string(CodeOf(err)))
		return EnsureCode(err, ErrNetwork, "alpha vantage call failed")
	}
	return nil
}

// envelope carries the in-band signals Alpha Vantage mixes into an
// otherwise normal 200 response.
type envelope struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (s *AlphaVantageService) getJSON(ctx context.Context, reqURL string, out any) error {
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
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("alpha vantage returned status 429")
	case resp.StatusCode != http.StatusOK:
		return NewError(ErrAPI, fmt.Sprintf("alpha vantage returned status %d", resp.StatusCode))
	}

	// Decoding twice is the price of the API reporting errors inside a
	// 200 body with a shape unrelated to the requested function.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return WrapError(ErrDataFormat, "failed to decode alpha vantage response", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Note != "" || env.Information != "" {
			return fmt.Errorf("alpha vantage quota note: %w", ErrThrottled)
		}
		if env.ErrorMessage != "" {
			return NewError(ErrAPI, "alpha vantage rejected the request")
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return WrapError(ErrDataFormat, "unexpected alpha vantage payload shape", err)
	}
	return nil
}

// parseOptionalFloat turns Alpha Vantage's stringly numbers into a
// float pointer, treating "None", "-" and empty as absent.
func parseOptionalFloat(v string) *float64 {
	if v == "" || v == "None" || v == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseNullDecimal(v string) decimal.NullDecimal {
	if v == "" || v == "None" || v == "-" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
