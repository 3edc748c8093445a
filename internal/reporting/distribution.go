package reporting

import (
	"strings"

	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/pkg/logger"
)

// BucketNotAnalyzed collects feedback items with no sentiment at all.
const BucketNotAnalyzed = "not_analyzed"

// Buckets is the fixed dashboard bucket set, display order.
var Buckets = []string{
	models.LabelVeryPositive,
	models.LabelPositive,
	models.LabelNeutral,
	models.LabelNegative,
	models.LabelVeryNegative,
	BucketNotAnalyzed,
}

// legacyLabels reconciles historical label spellings into the canonical set.
// Older pipeline versions stored upper-case labels from a coarse 4-value
// scheme; those map to their nearest canonical bucket. There is no legacy
// equivalent for the very_* buckets. New spellings extend this table, never
// the bucket set.
var legacyLabels = map[string]string{
	models.LabelVeryPositive: models.LabelVeryPositive,
	models.LabelPositive:     models.LabelPositive,
	models.LabelNeutral:      models.LabelNeutral,
	models.LabelNegative:     models.LabelNegative,
	models.LabelVeryNegative: models.LabelVeryNegative,
	"mixed":                  models.LabelNeutral,
}

// BucketStats is one dashboard bucket. AvgScore is nil for empty buckets and
// is recomputed from the bucket's own members, never carried forward.
type BucketStats struct {
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	AvgScore   *float64 `json:"avg_score"`
}

// SentimentDistribution reduces stored sentiment samples into the canonical
// 5+1 bucket distribution. Percentages are computed against the
// organization's total feedback count, not just the analyzed subset.
func SentimentDistribution(samples []models.SentimentSample, totalFeedback int) map[string]BucketStats {
	counts := map[string]int{}
	sums := map[string]float64{}
	scored := map[string]int{}

	analyzed := 0
	for _, s := range samples {
		bucket, ok := legacyLabels[strings.ToLower(strings.TrimSpace(s.Label))]
		if !ok {
			logger.Warn("Skipping unmapped sentiment label", zap.String("label", s.Label))
			continue
		}
		analyzed++
		counts[bucket]++
		if s.Score != nil {
			sums[bucket] += *s.Score
			scored[bucket]++
		}
	}

	notAnalyzed := totalFeedback - analyzed
	if notAnalyzed < 0 {
		notAnalyzed = 0
	}
	counts[BucketNotAnalyzed] = notAnalyzed

	dist := make(map[string]BucketStats, len(Buckets))
	for _, bucket := range Buckets {
		stats := BucketStats{Count: counts[bucket]}
		if totalFeedback > 0 {
			stats.Percentage = float64(stats.Count) / float64(totalFeedback) * 100
		}
		if n := scored[bucket]; n > 0 {
			avg := sums[bucket] / float64(n)
			stats.AvgScore = &avg
		}
		dist[bucket] = stats
	}

	return dist
}
