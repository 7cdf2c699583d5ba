package sentiment

import (
	"sort"

	"stockscope/models"
)

// topPosts caps how many recent posts the summary carries.
const topPosts = 10

// Aggregate merges scored posts into a summary: per-class counts, an
// overall score of (positive-negative)/total, and the most recent posts
// by timestamp. An empty input yields a zeroed summary, not NaN.
func Aggregate(posts []models.SocialPost) models.SentimentSummary {
	summary := models.SentimentSummary{
		Total: len(posts),
		Posts: []models.SocialPost{},
	}

	for _, post := range posts {
		switch post.Sentiment {
		case models.SentimentPositive:
			summary.Distribution.Positive++
		case models.SentimentNegative:
			summary.Distribution.Negative++
		default:
			summary.Distribution.Neutral++
		}
	}

	if summary.Total > 0 {
		summary.Overall = float64(summary.Distribution.Positive-summary.Distribution.Negative) / float64(summary.Total)
	}

	recent := make([]models.SocialPost, len(posts))
	copy(recent, posts)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp > recent[j].Timestamp
	})
	if len(recent) > topPosts {
		recent = recent[:topPosts]
	}
	summary.Posts = recent

	return summary
}
