package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func quarterlyStatement(end time.Time, revenue float64) FinancialStatement {
	return FinancialStatement{
		FiscalDateEnding: end,
		Period:           PeriodQuarterly,
		Revenue:          decimal.NullDecimal{Decimal: decimal.NewFromFloat(revenue), Valid: true},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStatementHistory_Latest(t *testing.T) {
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2024, time.March, 31), 90),
	}

	latest := history.Latest()
	if latest == nil {
		t.Fatal("Latest returned nil for non-empty history")
	}
	if !latest.FiscalDateEnding.Equal(date(2024, time.June, 30)) {
		t.Errorf("Latest should be the first entry, got %v", latest.FiscalDateEnding)
	}
}

func TestStatementHistory_Latest_Empty(t *testing.T) {
	var history StatementHistory
	if history.Latest() != nil {
		t.Error("Latest should return nil for an empty history")
	}
}

func TestStatementHistory_PriorQuarter(t *testing.T) {
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2024, time.March, 31), 90),
		quarterlyStatement(date(2023, time.December, 31), 85),
	}

	prior := history.PriorQuarter()
	if prior == nil {
		t.Fatal("PriorQuarter returned nil")
	}
	if !prior.FiscalDateEnding.Equal(date(2024, time.March, 31)) {
		t.Errorf("Expected prior quarter 2024-03-31, got %v", prior.FiscalDateEnding)
	}
}

func TestStatementHistory_PriorQuarter_GapDoesNotShift(t *testing.T) {
	// The quarter immediately before the latest is missing. A positional
	// lookup would return 2023-12-31 as "prior"; the date-keyed lookup
	// must report no match instead.
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2023, time.December, 31), 85),
	}

	if prior := history.PriorQuarter(); prior != nil {
		t.Errorf("Expected nil prior quarter across a gap, got %v", prior.FiscalDateEnding)
	}
}

func TestStatementHistory_YearAgo(t *testing.T) {
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2024, time.March, 31), 90),
		quarterlyStatement(date(2023, time.December, 31), 85),
		quarterlyStatement(date(2023, time.September, 30), 80),
		quarterlyStatement(date(2023, time.July, 1), 75),
	}

	yearAgo := history.YearAgo()
	if yearAgo == nil {
		t.Fatal("YearAgo returned nil")
	}
	if !yearAgo.FiscalDateEnding.Equal(date(2023, time.July, 1)) {
		t.Errorf("Expected year-ago period 2023-07-01, got %v", yearAgo.FiscalDateEnding)
	}
}

func TestStatementHistory_YearAgo_ShiftedFiscalCalendar(t *testing.T) {
	// Fiscal quarter ends drift between years; a few weeks of slack must
	// still match.
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2023, time.July, 29), 75),
	}

	yearAgo := history.YearAgo()
	if yearAgo == nil {
		t.Fatal("YearAgo should tolerate a shifted fiscal calendar")
	}
	if !yearAgo.FiscalDateEnding.Equal(date(2023, time.July, 29)) {
		t.Errorf("Expected 2023-07-29, got %v", yearAgo.FiscalDateEnding)
	}
}

func TestStatementHistory_YearAgo_OutOfTolerance(t *testing.T) {
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2023, time.March, 31), 70),
	}

	if yearAgo := history.YearAgo(); yearAgo != nil {
		t.Errorf("Expected nil for a period far outside tolerance, got %v", yearAgo.FiscalDateEnding)
	}
}

func TestStatementHistory_YearAgo_PrefersClosest(t *testing.T) {
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2023, time.July, 31), 76),
		quarterlyStatement(date(2023, time.June, 30), 75),
	}

	yearAgo := history.YearAgo()
	if yearAgo == nil {
		t.Fatal("YearAgo returned nil")
	}
	if !yearAgo.FiscalDateEnding.Equal(date(2023, time.June, 30)) {
		t.Errorf("Expected the closest candidate 2023-06-30, got %v", yearAgo.FiscalDateEnding)
	}
}

func TestStatementHistory_OnDate(t *testing.T) {
	history := StatementHistory{
		quarterlyStatement(date(2024, time.June, 30), 100),
		quarterlyStatement(date(2024, time.March, 31), 90),
	}

	got := history.OnDate(date(2024, time.March, 31))
	if got == nil {
		t.Fatal("OnDate returned nil for an existing period")
	}
	if !got.Revenue.Valid || !got.Revenue.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Errorf("OnDate returned the wrong period: %+v", got)
	}

	if miss := history.OnDate(date(2024, time.April, 1)); miss != nil {
		t.Errorf("Expected nil for an absent date, got %v", miss.FiscalDateEnding)
	}
}

func TestStatementHistory_OnDate_IgnoresTimeOfDay(t *testing.T) {
	history := StatementHistory{
		{
			FiscalDateEnding: time.Date(2024, time.June, 30, 23, 59, 0, 0, time.UTC),
			Period:           PeriodQuarterly,
		},
	}

	if history.OnDate(date(2024, time.June, 30)) == nil {
		t.Error("OnDate should match on the calendar day, not the instant")
	}
}
