package sentiment

// Finance-specific polarity lexicons. The sets are disjoint on purpose:
// a token scores at most once per occurrence.
var positiveWords = map[string]struct{}{
	// Market sentiment
	"bullish": {}, "uptrend": {}, "breakout": {}, "outperform": {}, "buy": {}, "long": {},
	"growth": {}, "profit": {}, "gain": {}, "positive": {}, "upgrade": {}, "strong": {},
	"surge": {}, "rally": {}, "recover": {}, "climb": {}, "beat": {}, "exceed": {},
	"momentum": {}, "opportunity": {}, "promising": {}, "confident": {}, "robust": {},
	"innovative": {}, "leadership": {}, "successful": {}, "efficient": {}, "advantage": {},

	// Financial metrics
	"revenue": {}, "earnings": {}, "dividend": {}, "buyback": {},
	"margin": {}, "cash": {}, "value": {}, "assets": {},
}

var negativeWords = map[string]struct{}{
	// Market sentiment
	"bearish": {}, "downtrend": {}, "breakdown": {}, "underperform": {}, "sell": {}, "short": {},
	"loss": {}, "negative": {}, "downgrade": {}, "weak": {}, "decline": {}, "drop": {},
	"fall": {}, "crash": {}, "bear": {}, "risk": {}, "debt": {}, "miss": {}, "below": {},
	"concern": {}, "worried": {}, "cautious": {}, "volatile": {}, "uncertainty": {},
	"problem": {}, "challenge": {}, "difficult": {}, "competition": {}, "pressure": {},

	// Financial metrics
	"liability": {}, "expense": {}, "cost": {},
	"deficit": {}, "bankruptcy": {}, "default": {}, "restructuring": {}, "layoff": {},
}

// intensityModifiers scale the next sentiment-bearing token. Multiple
// modifiers in a row accumulate multiplicatively left to right; the
// multiplier resets to 1 once applied. Negators flip the sign.
// The "n't" entry survives from the original word lists even though
// the tokenizer splits contractions, so it never fires in practice.
var intensityModifiers = map[string]float64{
	"very":          1.5,
	"highly":        1.5,
	"extremely":     2,
	"significantly": 1.5,
	"substantially": 1.5,
	"slightly":      0.5,
	"somewhat":      0.7,
	"marginally":    0.5,
	"not":           -1,
	"n't":           -1,
	"never":         -1,
}
