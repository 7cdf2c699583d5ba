// Package sentiment scores free-text social posts against fixed
// finance lexicons and aggregates scored posts into a distribution.
package sentiment

import (
	"regexp"
	"strconv"
	"strings"

	"stockscope/models"
)

// classifyThreshold separates positive/negative from neutral on the
// normalized score. Exact by design: tests hold it at 0.1.
const classifyThreshold = 0.1

// percentNudge is added per signed percentage found by ScoreWithContext.
const percentNudge = 0.2

var (
	wordPattern    = regexp.MustCompile(`[a-z0-9_]+`)
	percentPattern = regexp.MustCompile(`[-+]?\d+(\.\d+)?%`)
)

// Score tokenizes text to lowercase words, looks each up against the
// polarity lexicons with a running intensity multiplier, and returns a
// normalized score in [-1, 1] with its classification.
//
// Normalization divides the raw signed score by max(1, wordCount/10) so
// one strong word in a short post weighs more than in a long one.
func Score(text string) (float64, models.Sentiment) {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	var score float64
	multiplier := 1.0

	for _, word := range words {
		if m, ok := intensityModifiers[word]; ok {
			multiplier *= m
			continue
		}

		if _, ok := positiveWords[word]; ok {
			score += multiplier
			multiplier = 1
		} else if _, ok := negativeWords[word]; ok {
			score -= multiplier
			multiplier = 1
		}
	}

	divisor := float64(len(words)) / 10
	if divisor < 1 {
		divisor = 1
	}
	normalized := clamp(score / divisor)

	return normalized, Classify(normalized)
}

// ScoreWithContext extends Score by nudging the result for each signed
// percentage mentioned in the text ("+5%" up, "-3.2%" down), then
// re-clamping to [-1, 1].
func ScoreWithContext(text string) (float64, models.Sentiment) {
	score, _ := Score(text)

	for _, match := range percentPattern.FindAllString(text, -1) {
		value, err := strconv.ParseFloat(strings.TrimSuffix(match, "%"), 64)
		if err != nil {
			continue
		}
		if value > 0 {
			score += percentNudge
		} else if value < 0 {
			score -= percentNudge
		}
	}

	score = clamp(score)
	return score, Classify(score)
}

// Classify maps a normalized score to its sentiment class.
func Classify(score float64) models.Sentiment {
	switch {
	case score > classifyThreshold:
		return models.SentimentPositive
	case score < -classifyThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// ScorePosts returns a copy of posts with each content scored via
// ScoreWithContext. Posts already carrying a non-neutral provider label
// keep it.
func ScorePosts(posts []models.SocialPost) []models.SocialPost {
	scored := make([]models.SocialPost, len(posts))
	for i, post := range posts {
		scored[i] = post
		if post.Sentiment == models.SentimentNeutral || post.Sentiment == "" {
			_, scored[i].Sentiment = ScoreWithContext(post.Content)
		}
	}
	return scored
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
