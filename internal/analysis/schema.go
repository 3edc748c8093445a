package analysis

import (
	"strings"

	"github.com/feedbacklens/backend/internal/oracle"
	"github.com/feedbacklens/backend/internal/storage/models"
)

var canonicalLabels = map[string]bool{
	models.LabelVeryNegative: true,
	models.LabelNegative:     true,
	models.LabelNeutral:      true,
	models.LabelPositive:     true,
	models.LabelVeryPositive: true,
}

// ValidateResult enforces the oracle response contract and fills safe
// defaults for optional sub-structures. Required-field checks run in a fixed
// order and fail with a SchemaError naming the first violation; optional
// sections requested by cfg default to empty rather than failing.
func ValidateResult(raw oracle.RawResult, cfg Config) (*models.AnalysisRecord, error) {
	if raw == nil {
		return nil, &SchemaError{Field: "overall_sentiment", Reason: "is missing"}
	}

	overall, ok := asMap(raw["overall_sentiment"])
	if !ok {
		return nil, &SchemaError{Field: "overall_sentiment", Reason: "is missing"}
	}

	for _, field := range []string{"score", "label", "confidence"} {
		if _, present := overall[field]; !present {
			return nil, &SchemaError{Field: "overall_sentiment." + field, Reason: "is missing"}
		}
	}

	score, ok := asFloat(overall["score"])
	if !ok {
		return nil, &SchemaError{Field: "overall_sentiment.score", Reason: "is not numeric"}
	}
	if score < -1.0 || score > 1.0 {
		return nil, &SchemaError{Field: "overall_sentiment.score", Reason: "is outside [-1.0, 1.0]"}
	}

	label := strings.ToLower(strings.TrimSpace(asString(overall["label"])))
	if !canonicalLabels[label] {
		return nil, &SchemaError{Field: "overall_sentiment.label", Reason: "is not a canonical sentiment label"}
	}

	confidence, ok := asFloat(overall["confidence"])
	if !ok {
		return nil, &SchemaError{Field: "overall_sentiment.confidence", Reason: "is not numeric"}
	}
	if confidence < 0.0 || confidence > 1.0 {
		return nil, &SchemaError{Field: "overall_sentiment.confidence", Reason: "is outside [0.0, 1.0]"}
	}

	rec := &models.AnalysisRecord{
		OverallScore:     score,
		OverallLabel:     label,
		Confidence:       confidence,
		AspectSentiments: parseAspects(raw["aspect_sentiments"]),
		Emotions:         parseEmotions(raw["emotions"]),
		Intent:           parseIntent(raw["intent"]),
		Urgency:          parseUrgency(raw["urgency"]),
		KeyPhrases:       asStringSlice(raw["key_phrases"]),
		Entities:         parseEntities(raw["entities"]),
	}

	return rec, nil
}

func parseAspects(v interface{}) map[string]models.AspectSentiment {
	out := map[string]models.AspectSentiment{}
	m, ok := asMap(v)
	if !ok {
		return out
	}
	for name, entry := range m {
		em, ok := asMap(entry)
		if !ok {
			continue
		}
		score, _ := asFloat(em["score"])
		mentions, _ := asFloat(em["mention_count"])
		out[name] = models.AspectSentiment{Score: score, MentionCount: int(mentions)}
	}
	return out
}

func parseEmotions(v interface{}) map[string]float64 {
	out := map[string]float64{}
	m, ok := asMap(v)
	if !ok {
		return out
	}
	for name, entry := range m {
		if score, ok := asFloat(entry); ok {
			out[strings.ToLower(name)] = score
		}
	}
	return out
}

func parseIntent(v interface{}) models.Intent {
	intent := models.Intent{Type: models.IntentUnknown, Confidence: 0.0}
	m, ok := asMap(v)
	if !ok {
		return intent
	}
	if t := strings.ToLower(strings.TrimSpace(asString(m["type"]))); t != "" {
		intent.Type = t
	}
	if c, ok := asFloat(m["confidence"]); ok {
		intent.Confidence = c
	}
	return intent
}

func parseUrgency(v interface{}) models.Urgency {
	urgency := models.Urgency{Level: models.UrgencyMedium, Indicators: []string{}}
	m, ok := asMap(v)
	if !ok {
		return urgency
	}
	if level := strings.ToLower(strings.TrimSpace(asString(m["level"]))); level != "" {
		urgency.Level = level
	}
	if indicators := asStringSlice(m["indicators"]); indicators != nil {
		urgency.Indicators = indicators
	}
	return urgency
}

func parseEntities(v interface{}) models.Entities {
	entities := models.Entities{Products: []string{}, Features: []string{}, Issues: []string{}}
	m, ok := asMap(v)
	if !ok {
		return entities
	}
	if products := asStringSlice(m["products"]); products != nil {
		entities.Products = products
	}
	if features := asStringSlice(m["features"]); features != nil {
		entities.Features = features
	}
	if issues := asStringSlice(m["issues"]); issues != nil {
		entities.Issues = issues
	}
	return entities
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := []string{}
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
