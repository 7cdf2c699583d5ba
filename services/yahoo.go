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

	"github.com/shopspring/decimal"
)

// YahooService handles communication with the Yahoo Finance API family:
// the v8 chart endpoint for prices, the v1 search endpoint for symbol
// lookup, and the v10 quoteSummary endpoint for financial statements.
// None of these are quota-constrained, so calls skip the rate limiter.
type YahooService struct {
	httpClient *http.Client
	chartURL   string
	searchURL  string
	summaryURL string
}

// NewYahooService creates a new YahooService instance.
func NewYahooService() *YahooService {
	return &YahooService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		chartURL:   "https://query1.finance.yahoo.com/v8/finance/chart",
		searchURL:  "https://query1.finance.yahoo.com/v1/finance/search",
		summaryURL: "https://query1.finance.yahoo.com/v10/finance/quoteSummary",
	}
}

// chartResponse is the wire shape of the v8 chart endpoint. OHLCV
// arrays are aligned to the timestamp array and may contain nulls for
// halted sessions, so every element is a pointer.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartMeta struct {
	Symbol               string  `json:"symbol"`
	Currency             string  `json:"currency"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	PreviousClose        float64 `json:"previousClose"`
	RegularMarketOpen    float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  int64   `json:"regularMarketVolume"`
	MarketCap            float64 `json:"marketCap"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetPriceHistory returns daily bars for [start, end]. Bars whose close
// is absent in the payload carry zeroes, matching how the chart API
// reports halted days.
func (s *YahooService) GetPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	params.Set("period2", fmt.Sprintf("%d", end.Unix()))
	params.Set("interval", "1d")

	result, err := s.fetchChart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}
	return normalizeBars(result)
}

// GetDailyPrice returns the latest bar with its change against the
// prior close. Change is nil when the series has a single data point.
func (s *YahooService) GetDailyPrice(ctx context.Context, symbol string) (*models.DailyPrice, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "5d")

	result, err := s.fetchChart(ctx, symbol, params)
	if err != nil {
		return nil, err
	}

	bars, err := normalizeBars(result)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, NewError(ErrDataFormat, fmt.Sprintf("no recent bars for %s", symbol))
	}

	last := bars[len(bars)-1]
	daily := &models.DailyPrice{
		Date:   last.Date,
		Open:   last.Open,
		High:   last.High,
		Low:    last.Low,
		Close:  last.Close,
		Volume: last.Volume,
	}

	if len(bars) >= 2 && bars[len(bars)-2].Close != 0 {
		prev := bars[len(bars)-2].Close
		change := last.Close - prev
		changePct := change / prev * 100
		daily.Change = &change
		daily.ChangePercent = &changePct
	}

	return daily, nil
}

// fetchChart performs the HTTP call plus retry and defensive unwrapping
// down to the single chart result.
func (s *YahooService) fetchChart(ctx context.Context, symbol string, params url.Values) (*chartResult, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("yahoo", "chart")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("yahoo", "chart")

	var resp chartResponse
	reqURL := s.chartURL + "/" + url.PathEscape(symbol) + "?" + params.Encode()

	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		return s.getJSON(ctx, reqURL, &resp)
	})
	if err != nil {
		metrics.RecordExternalAPIError("yahoo", "chart", string(CodeOf(err)))
		return nil, EnsureCode(err, ErrNetwork, "yahoo chart call failed")
	}

	if resp.Chart.Error != nil {
		return nil, NewError(ErrInvalidSymbol,
			fmt.Sprintf("yahoo reports no data for %s: %s", symbol, resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, NewError(ErrDataFormat, fmt.Sprintf("no price data available for %s", symbol))
	}
	return &resp.Chart.Result[0], nil
}

// normalizeBars converts the aligned chart arrays into PriceBars,
// verifying the expected nesting exists before indexing into it.
func normalizeBars(result *chartResult) ([]models.PriceBar, error) {
	if len(result.Indicators.Quote) == 0 {
		return nil, NewError(ErrDataFormat, "chart payload missing quote arrays")
	}
	quote := result.Indicators.Quote[0]
	if quote.Close == nil || len(quote.Close) != len(result.Timestamp) {
		return nil, NewError(ErrDataFormat, "chart close array missing or misaligned")
	}

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bars = append(bars, models.PriceBar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   derefAt(quote.Open, i),
			High:   derefAt(quote.High, i),
			Low:    derefAt(quote.Low, i),
			Close:  derefAt(quote.Close, i),
			Volume: derefIntAt(quote.Volume, i),
		})
	}
	return bars, nil
}

// searchResponse is the wire shape of the v1 search endpoint.
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
		Exchange  string `json:"exchange"`
		Currency  string `json:"currency"`
	} `json:"quotes"`
}

// Search looks up symbols matching a free-text query and normalizes
// the matches.
func (s *YahooService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("yahoo", "search")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("yahoo", "search")

	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "10")
	params.Set("newsCount", "0")

	var resp searchResponse
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		return s.getJSON(ctx, s.searchURL+"?"+params.Encode(), &resp)
	})
	if err != nil {
		metrics.RecordExternalAPIError("yahoo", "search", string(CodeOf(err)))
		return nil, EnsureCode(err, ErrNetwork, "yahoo search call failed")
	}

	results := make([]models.SearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}
		currency := q.Currency
		if currency == "" {
			currency = "USD"
		}
		results = append(results, models.SearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Type:     q.QuoteType,
			Exchange: q.Exchange,
			Currency: currency,
		})
	}
	return results, nil
}

// quoteSummaryResponse is the wire shape of the v10 quoteSummary
// endpoint. Monetary values arrive as {raw, fmt} pairs; only raw is
// used, and a missing pair means the line item is absent.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *yahooError                  `json:"error"`
	} `json:"quoteSummary"`
}

type rawValue struct {
	Raw *float64 `json:"raw"`
}

type balanceSheetModule struct {
	Statements []struct {
		EndDate            rawValue `json:"endDate"`
		TotalAssets        rawValue `json:"totalAssets"`
		TotalLiab          rawValue `json:"totalLiab"`
		StockholdersEquity rawValue `json:"stockholdersEquity"`
	} `json:"balanceSheetStatements"`
}

type incomeStatementModule struct {
	Statements []struct {
		EndDate         rawValue `json:"endDate"`
		TotalRevenue    rawValue `json:"totalRevenue"`
		GrossProfit     rawValue `json:"grossProfit"`
		OperatingIncome rawValue `json:"operatingIncome"`
		NetIncome       rawValue `json:"netIncome"`
		EBITDA          rawValue `json:"ebitda"`
	} `json:"incomeStatementHistory"`
}

type cashFlowModule struct {
	Statements []struct {
		EndDate           rawValue `json:"endDate"`
		FreeCashFlow      rawValue `json:"freeCashFlow"`
		OperatingCashFlow rawValue `json:"operatingCashFlow"`
	} `json:"cashflowStatements"`
}

// GetBalanceSheet fetches balance-sheet periods, most recent first.
func (s *YahooService) GetBalanceSheet(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error) {
	module := "balanceSheetHistory"
	if quarterly {
		module = "balanceSheetHistoryQuarterly"
	}

	raw, err := s.fetchSummaryModule(ctx, symbol, module)
	if err != nil {
		return nil, err
	}

	var parsed balanceSheetModule
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, WrapError(ErrDataFormat, "malformed balance sheet module", err)
	}

	period := periodOf(quarterly)
	history := make(models.StatementHistory, 0, len(parsed.Statements))
	for _, st := range parsed.Statements {
		if st.EndDate.Raw == nil {
			continue
		}
		history = append(history, models.FinancialStatement{
			FiscalDateEnding: time.Unix(int64(*st.EndDate.Raw), 0).UTC(),
			Period:           period,
			TotalAssets:      nullDecimal(st.TotalAssets),
			TotalLiabilities: nullDecimal(st.TotalLiab),
			TotalEquity:      nullDecimal(st.StockholdersEquity),
		})
	}
	return history, nil
}

// GetIncomeStatement fetches income-statement periods, most recent first.
func (s *YahooService) GetIncomeStatement(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error) {
	module := "incomeStatementHistory"
	if quarterly {
		module = "incomeStatementHistoryQuarterly"
	}

	raw, err := s.fetchSummaryModule(ctx, symbol, module)
	if err != nil {
		return nil, err
	}

	var parsed incomeStatementModule
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, WrapError(ErrDataFormat, "malformed income statement module", err)
	}

	period := periodOf(quarterly)
	history := make(models.StatementHistory, 0, len(parsed.Statements))
	for _, st := range parsed.Statements {
		if st.EndDate.Raw == nil {
			continue
		}
		history = append(history, models.FinancialStatement{
			FiscalDateEnding: time.Unix(int64(*st.EndDate.Raw), 0).UTC(),
			Period:           period,
			Revenue:          nullDecimal(st.TotalRevenue),
			GrossProfit:      nullDecimal(st.GrossProfit),
			OperatingIncome:  nullDecimal(st.OperatingIncome),
			NetIncome:        nullDecimal(st.NetIncome),
			EBITDA:           nullDecimal(st.EBITDA),
		})
	}
	return history, nil
}

// GetCashFlow fetches cash-flow periods, most recent first.
func (s *YahooService) GetCashFlow(ctx context.Context, symbol string, quarterly bool) (models.StatementHistory, error) {
	module := "cashflowStatementHistory"
	if quarterly {
		module = "cashflowStatementHistoryQuarterly"
	}

	raw, err := s.fetchSummaryModule(ctx, symbol, module)
	if err != nil {
		return nil, err
	}

	var parsed cashFlowModule
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, WrapError(ErrDataFormat, "malformed cash flow module", err)
	}

	period := periodOf(quarterly)
	history := make(models.StatementHistory, 0, len(parsed.Statements))
	for _, st := range parsed.Statements {
		if st.EndDate.Raw == nil {
			continue
		}
		history = append(history, models.FinancialStatement{
			FiscalDateEnding:  time.Unix(int64(*st.EndDate.Raw), 0).UTC(),
			Period:            period,
			FreeCashFlow:      nullDecimal(st.FreeCashFlow),
			OperatingCashFlow: nullDecimal(st.OperatingCashFlow),
		})
	}
	return history, nil
}

func (s *YahooService) fetchSummaryModule(ctx context.Context, symbol, module string) (json.RawMessage, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest("yahoo", module)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI("yahoo", module)

	reqURL := s.summaryURL + "/" + url.PathEscape(symbol) + "?modules=" + module

	var resp quoteSummaryResponse
	err := WithRetry(ctx, DefaultRetryConfig, func() error {
		return s.getJSON(ctx, reqURL, &resp)
	})
	if err != nil {
		metrics.RecordExternalAPIError("yahoo", module, string(CodeOf(err)))
		return nil, EnsureCode(err, ErrNetwork, "yahoo quoteSummary call failed")
	}

	if resp.QuoteSummary.Error != nil {
		return nil, NewError(ErrAPI,
			fmt.Sprintf("yahoo quoteSummary error for %s: %s", symbol, resp.QuoteSummary.Error.Description))
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, NewError(ErrDataFormat, fmt.Sprintf("no %s data for %s", module, symbol))
	}

	raw, ok := resp.QuoteSummary.Result[0][module]
	if !ok {
		return nil, NewError(ErrDataFormat, fmt.Sprintf("quoteSummary result missing %s module", module))
	}
	return raw, nil
}

// getJSON issues one GET and decodes the body, classifying the HTTP
// status. 429 stays unclassified so the retry policy treats it as
// transient.
func (s *YahooService) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "stockscope/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewError(ErrInvalidSymbol, "symbol not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("yahoo returned status 429")
	case resp.StatusCode != http.StatusOK:
		return NewError(ErrAPI, fmt.Sprintf("yahoo returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return WrapError(ErrDataFormat, "failed to decode yahoo response", err)
	}
	return nil
}

func periodOf(quarterly bool) models.StatementPeriod {
	if quarterly {
		return models.PeriodQuarterly
	}
	return models.PeriodAnnual
}

func nullDecimal(v rawValue) decimal.NullDecimal {
	if v.Raw == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v.Raw), Valid: true}
}

func derefAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func derefIntAt(vals []*int64, i int) int64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
