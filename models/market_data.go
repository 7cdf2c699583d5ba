package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents one trading day of OHLCV data. Series are ordered
// chronologically; missing trading days are simply absent.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// DailyPrice is the most recent bar plus its change versus the prior
// close. Change fields are nil when the series has no prior bar to
// compare against (freshly listed symbols).
type DailyPrice struct {
	Date          time.Time `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        int64     `json:"volume"`
	Change        *float64  `json:"change"`
	ChangePercent *float64  `json:"changePercent"`
}

// CompanyOverview is the fundamental snapshot for one symbol. Ratio
// fields are nil when the provider omits them or reports "None".
type CompanyOverview struct {
	Symbol                     string          `json:"symbol"`
	Name                       string          `json:"name"`
	Description                string          `json:"description,omitempty"`
	Exchange                   string          `json:"exchange"`
	Sector                     string          `json:"sector"`
	Industry                   string          `json:"industry"`
	MarketCap                  decimal.Decimal `json:"marketCap"`
	PERatio                    *float64        `json:"peRatio"`
	EPS                        *float64        `json:"eps"`
	DividendYield              *float64        `json:"dividendYield"`
	ProfitMargin               *float64        `json:"profitMargin"`
	Beta                       *float64        `json:"beta"`
	QuarterlyEarningsGrowthYOY *float64        `json:"quarterlyEarningsGrowthYOY"`
	QuarterlyRevenueGrowthYOY  *float64        `json:"quarterlyRevenueGrowthYOY"`
}

// TechnicalIndicators holds derived series aligned index-for-index with
// the price series they were computed from. Undefined positions are nil.
type TechnicalIndicators struct {
	MA50         []*float64 `json:"ma50"`
	MA200        []*float64 `json:"ma200"`
	DailyReturns []float64  `json:"dailyReturns"`
	Volatility   []*float64 `json:"volatility"`
}

// SearchResult is one normalized symbol-search match.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

// SearchResponse wraps symbol-search matches for the API layer.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// StockBundle is the merged response for one research request.
type StockBundle struct {
	RequestID           string               `json:"requestId"`
	Symbol              string               `json:"symbol"`
	Overview            *CompanyOverview     `json:"overview"`
	DailyPrice          *DailyPrice          `json:"dailyPrice"`
	HistoricalPrices    []PriceBar           `json:"historicalPrices"`
	Financials          *FinancialData       `json:"financials"`
	TechnicalIndicators *TechnicalIndicators `json:"technicalIndicators"`
	FetchedAt           time.Time            `json:"fetchedAt"`
}
