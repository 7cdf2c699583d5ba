package research

import (
	"fmt"
	"strings"

	"stockscope/models"
)

const summarySystemPrompt = `You are a financial research assistant. You are given a snapshot of
market data, fundamentals and derived technical indicators for one
stock. Write a concise plain-English summary (3-5 paragraphs) of the
company's current situation. Be factual and neutral: describe what the
numbers show, do not give investment advice or price targets.`

// buildSummaryPrompt renders the research bundle as the user prompt for
// the narrative summary.
func buildSummaryPrompt(bundle *models.StockBundle) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Summarize the current situation of %s:\n\n", bundle.Symbol))

	if o := bundle.Overview; o != nil {
		sb.WriteString(fmt.Sprintf("Company: %s (%s, %s / %s)\n", o.Name, o.Exchange, o.Sector, o.Industry))
		sb.WriteString(fmt.Sprintf("Market Cap: %s\n", o.MarketCap.String()))
		if o.PERatio != nil {
			sb.WriteString(fmt.Sprintf("P/E Ratio: %.2f\n", *o.PERatio))
		}
		if o.EPS != nil {
			sb.WriteString(fmt.Sprintf("EPS: %.2f\n", *o.EPS))
		}
		if o.ProfitMargin != nil {
			sb.WriteString(fmt.Sprintf("Profit Margin: %.2f%%\n", *o.ProfitMargin*100))
		}
		if o.QuarterlyRevenueGrowthYOY != nil {
			sb.WriteString(fmt.Sprintf("Quarterly Revenue Growth YoY: %.2f%%\n", *o.QuarterlyRevenueGrowthYOY*100))
		}
		sb.WriteString("\n")
	}

	if d := bundle.DailyPrice; d != nil {
		sb.WriteString(fmt.Sprintf("Latest close: %.2f", d.Close))
		if d.ChangePercent != nil {
			sb.WriteString(fmt.Sprintf(" (%+.2f%% on the day)", *d.ChangePercent))
		}
		sb.WriteString("\n")
	}

	if ti := bundle.TechnicalIndicators; ti != nil {
		if v := lastDefined(ti.MA50); v != nil {
			sb.WriteString(fmt.Sprintf("50-day moving average: %.2f\n", *v))
		}
		if v := lastDefined(ti.MA200); v != nil {
			sb.WriteString(fmt.Sprintf("200-day moving average: %.2f\n", *v))
		}
		if v := lastDefined(ti.Volatility); v != nil {
			sb.WriteString(fmt.Sprintf("20-day volatility of daily returns: %.4f\n", *v))
		}
	}

	if f := bundle.Financials; f != nil {
		if latest := f.IncomeStatement.QuarterlyReports.Latest(); latest != nil {
			sb.WriteString(fmt.Sprintf("\nLatest quarter (%s):\n", latest.FiscalDateEnding.Format("2006-01-02")))
			if latest.Revenue.Valid {
				sb.WriteString(fmt.Sprintf("Revenue: %s\n", latest.Revenue.Decimal.String()))
			}
			if latest.NetIncome.Valid {
				sb.WriteString(fmt.Sprintf("Net Income: %s\n", latest.NetIncome.Decimal.String()))
			}
			if yearAgo := f.IncomeStatement.QuarterlyReports.YearAgo(); yearAgo != nil && yearAgo.Revenue.Valid {
				sb.WriteString(fmt.Sprintf("Revenue a year earlier: %s\n", yearAgo.Revenue.Decimal.String()))
			}
		}
	}

	sb.WriteString("\nWrite the summary now.")
	return sb.String()
}

func lastDefined(vals []*float64) *float64 {
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i] != nil {
			return vals[i]
		}
	}
	return nil
}
