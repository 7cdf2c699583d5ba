// Package indicators computes derived technical series over ordered
// price bars. All functions are pure: no I/O, no mutation of input,
// and output slices are aligned index-for-index with their input.
// Undefined positions are nil, never zero or NaN.
package indicators

import (
	"math"

	"stockscope/models"
)

// Default windows for the research bundle.
const (
	ShortMAPeriod    = 50
	LongMAPeriod     = 200
	VolatilityWindow = 20
)

// MovingAverage returns the trailing mean of closing prices. Index i is
// the mean of close[i-period+1 .. i] and is defined only once a full
// window is available (i >= period-1).
func MovingAverage(bars []models.PriceBar, period int) []*float64 {
	out := make([]*float64, len(bars))
	if period < 1 {
		return out
	}

	var sum float64
	for i := range bars {
		sum += bars[i].Close
		if i >= period {
			sum -= bars[i-period].Close
		}
		if i >= period-1 {
			mean := sum / float64(period)
			out[i] = &mean
		}
	}
	return out
}

// DailyReturns returns percentage day-over-day changes of the close.
// Element 0 is defined as 0 since there is no prior bar.
func DailyReturns(bars []models.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		out[i] = (bars[i].Close - prev) / prev * 100
	}
	return out
}

// RollingVolatility returns the population standard deviation of the
// window returns immediately preceding each index: for i >= window it
// covers returns[i-window .. i-1], excluding i itself. This asymmetry
// with MovingAverage's inclusive window is deliberate and matches how
// the series are aligned downstream.
func RollingVolatility(returns []float64, window int) []*float64 {
	out := make([]*float64, len(returns))
	if window < 1 {
		return out
	}

	for i := window; i < len(returns); i++ {
		slice := returns[i-window : i]

		var mean float64
		for _, r := range slice {
			mean += r
		}
		mean /= float64(window)

		var sumSq float64
		for _, r := range slice {
			d := r - mean
			sumSq += d * d
		}
		sd := math.Sqrt(sumSq / float64(window))
		out[i] = &sd
	}
	return out
}

// Compute derives the full indicator bundle for a price series.
func Compute(bars []models.PriceBar) *models.TechnicalIndicators {
	returns := DailyReturns(bars)
	return &models.TechnicalIndicators{
		MA50:         MovingAverage(bars, ShortMAPeriod),
		MA200:        MovingAverage(bars, LongMAPeriod),
		DailyReturns: returns,
		Volatility:   RollingVolatility(returns, VolatilityWindow),
	}
}
