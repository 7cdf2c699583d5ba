package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementPeriod distinguishes annual from quarterly reports.
type StatementPeriod string

const (
	PeriodAnnual    StatementPeriod = "annual"
	PeriodQuarterly StatementPeriod = "quarterly"
)

// FinancialStatement is one reporting period. Line items are optional;
// providers routinely omit fields or report them as "None".
type FinancialStatement struct {
	FiscalDateEnding  time.Time           `json:"fiscalDateEnding"`
	Period            StatementPeriod     `json:"period"`
	Revenue           decimal.NullDecimal `json:"revenue"`
	GrossProfit       decimal.NullDecimal `json:"grossProfit"`
	OperatingIncome   decimal.NullDecimal `json:"operatingIncome"`
	NetIncome         decimal.NullDecimal `json:"netIncome"`
	EBITDA            decimal.NullDecimal `json:"ebitda"`
	TotalAssets       decimal.NullDecimal `json:"totalAssets"`
	TotalLiabilities  decimal.NullDecimal `json:"totalLiabilities"`
	TotalEquity       decimal.NullDecimal `json:"totalEquity"`
	FreeCashFlow      decimal.NullDecimal `json:"freeCashFlow"`
	OperatingCashFlow decimal.NullDecimal `json:"operatingCashFlow"`
}

// StatementHistory is a series of reporting periods ordered
// most-recent-first as received from the provider.
type StatementHistory []FinancialStatement

// FinancialData groups the statement series for one symbol.
type FinancialData struct {
	IncomeStatement StatementReports `json:"incomeStatement"`
	BalanceSheet    StatementReports `json:"balanceSheet"`
}

// StatementReports holds both cadences of one statement type.
type StatementReports struct {
	QuarterlyReports StatementHistory `json:"quarterlyReports"`
	AnnualReports    StatementHistory `json:"annualReports"`
}

// FinancialStatements groups one cadence of all three statement types
// for a symbol, as served by the financials endpoint.
type FinancialStatements struct {
	BalanceSheet    StatementHistory `json:"balanceSheet"`
	IncomeStatement StatementHistory `json:"incomeStatement"`
	CashFlow        StatementHistory `json:"cashFlow"`
}

// yearAgoTolerance bounds how far a fiscal end date may drift from the
// 364-day target and still count as the year-ago period. Fiscal
// calendars shift quarter ends by a few weeks between years.
const yearAgoTolerance = 45 * 24 * time.Hour

// Latest returns the most recent statement, or nil for an empty series.
func (h StatementHistory) Latest() *FinancialStatement {
	if len(h) == 0 {
		return nil
	}
	return &h[0]
}

// PriorQuarter returns the statement for the quarter immediately before
// the latest one, located by fiscal end date rather than slice position
// so a gap in the series cannot silently shift the comparison.
func (h StatementHistory) PriorQuarter() *FinancialStatement {
	latest := h.Latest()
	if latest == nil {
		return nil
	}
	target := latest.FiscalDateEnding.Add(-91 * 24 * time.Hour)
	return h.closestTo(target, yearAgoTolerance, latest.FiscalDateEnding)
}

// YearAgo returns the statement roughly 364 days before the latest one,
// or nil when no period falls within tolerance of that date.
func (h StatementHistory) YearAgo() *FinancialStatement {
	latest := h.Latest()
	if latest == nil {
		return nil
	}
	target := latest.FiscalDateEnding.Add(-364 * 24 * time.Hour)
	return h.closestTo(target, yearAgoTolerance, latest.FiscalDateEnding)
}

// OnDate returns the statement whose fiscal end date matches the given
// calendar day exactly, or nil.
func (h StatementHistory) OnDate(date time.Time) *FinancialStatement {
	y, m, d := date.Date()
	for i := range h {
		sy, sm, sd := h[i].FiscalDateEnding.Date()
		if sy == y && sm == m && sd == d {
			return &h[i]
		}
	}
	return nil
}

func (h StatementHistory) closestTo(target time.Time, tolerance time.Duration, exclude time.Time) *FinancialStatement {
	var best *FinancialStatement
	var bestDelta time.Duration
	for i := range h {
		end := h[i].FiscalDateEnding
		if end.Equal(exclude) {
			continue
		}
		delta := end.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if delta > tolerance {
			continue
		}
		if best == nil || delta < bestDelta {
			best = &h[i]
			bestDelta = delta
		}
	}
	return best
}
