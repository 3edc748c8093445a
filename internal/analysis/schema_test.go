package analysis

import (
	"errors"
	"testing"

	"github.com/feedbacklens/backend/internal/oracle"
	"github.com/feedbacklens/backend/internal/storage/models"
)

func validRaw() oracle.RawResult {
	return oracle.RawResult{
		"overall_sentiment": map[string]interface{}{
			"score":      0.7,
			"label":      "positive",
			"confidence": 0.9,
		},
	}
}

func TestValidateResultAcceptsMinimalReply(t *testing.T) {
	rec, err := ValidateResult(validRaw(), Config{})
	if err != nil {
		t.Fatalf("ValidateResult() error = %v", err)
	}

	if rec.OverallScore != 0.7 {
		t.Fatalf("OverallScore = %v, want 0.7", rec.OverallScore)
	}
	if rec.OverallLabel != models.LabelPositive {
		t.Fatalf("OverallLabel = %q, want %q", rec.OverallLabel, models.LabelPositive)
	}
	if rec.Confidence != 0.9 {
		t.Fatalf("Confidence = %v, want 0.9", rec.Confidence)
	}
}

func TestValidateResultScoreBoundaries(t *testing.T) {
	for _, score := range []float64{-1.0, 1.0, 0.0} {
		raw := validRaw()
		raw["overall_sentiment"].(map[string]interface{})["score"] = score
		if _, err := ValidateResult(raw, Config{}); err != nil {
			t.Fatalf("score %v rejected: %v", score, err)
		}
	}

	for _, score := range []float64{-1.01, 1.01, 2.5} {
		raw := validRaw()
		raw["overall_sentiment"].(map[string]interface{})["score"] = score
		_, err := ValidateResult(raw, Config{})
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("score %v: error = %v, want SchemaError", score, err)
		}
		if schemaErr.Field != "overall_sentiment.score" {
			t.Fatalf("score %v: field = %q", score, schemaErr.Field)
		}
	}
}

func TestValidateResultMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   oracle.RawResult
		field string
	}{
		{"nil reply", nil, "overall_sentiment"},
		{"no overall_sentiment", oracle.RawResult{"emotions": map[string]interface{}{}}, "overall_sentiment"},
		{
			"missing score",
			oracle.RawResult{"overall_sentiment": map[string]interface{}{"label": "neutral", "confidence": 0.5}},
			"overall_sentiment.score",
		},
		{
			"missing label",
			oracle.RawResult{"overall_sentiment": map[string]interface{}{"score": 0.1, "confidence": 0.5}},
			"overall_sentiment.label",
		},
		{
			"missing confidence",
			oracle.RawResult{"overall_sentiment": map[string]interface{}{"score": 0.1, "label": "neutral"}},
			"overall_sentiment.confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateResult(tt.raw, Config{})
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("error = %v, want SchemaError", err)
			}
			if schemaErr.Field != tt.field {
				t.Fatalf("field = %q, want %q", schemaErr.Field, tt.field)
			}
		})
	}
}

func TestValidateResultNonNumericScore(t *testing.T) {
	raw := validRaw()
	raw["overall_sentiment"].(map[string]interface{})["score"] = "very positive"

	_, err := ValidateResult(raw, Config{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
	if schemaErr.Reason != "is not numeric" {
		t.Fatalf("reason = %q", schemaErr.Reason)
	}
}

func TestValidateResultNormalizesLabel(t *testing.T) {
	raw := validRaw()
	raw["overall_sentiment"].(map[string]interface{})["label"] = "  Very_Positive "

	rec, err := ValidateResult(raw, Config{})
	if err != nil {
		t.Fatalf("ValidateResult() error = %v", err)
	}
	if rec.OverallLabel != models.LabelVeryPositive {
		t.Fatalf("OverallLabel = %q, want %q", rec.OverallLabel, models.LabelVeryPositive)
	}
}

func TestValidateResultRejectsUnknownLabel(t *testing.T) {
	raw := validRaw()
	raw["overall_sentiment"].(map[string]interface{})["label"] = "ecstatic"

	_, err := ValidateResult(raw, Config{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
	if schemaErr.Field != "overall_sentiment.label" {
		t.Fatalf("field = %q", schemaErr.Field)
	}
}

func TestValidateResultConfidenceRange(t *testing.T) {
	for _, confidence := range []float64{-0.1, 1.1} {
		raw := validRaw()
		raw["overall_sentiment"].(map[string]interface{})["confidence"] = confidence
		if _, err := ValidateResult(raw, Config{}); err == nil {
			t.Fatalf("confidence %v accepted", confidence)
		}
	}
}

func TestValidateResultOptionalSectionDefaults(t *testing.T) {
	rec, err := ValidateResult(validRaw(), Config{
		DetectAspects:     true,
		DetectEmotions:    true,
		DetectIntent:      true,
		ExtractKeyPhrases: true,
	})
	if err != nil {
		t.Fatalf("ValidateResult() error = %v", err)
	}

	if rec.AspectSentiments == nil || len(rec.AspectSentiments) != 0 {
		t.Fatalf("AspectSentiments = %v, want empty map", rec.AspectSentiments)
	}
	if rec.Emotions == nil || len(rec.Emotions) != 0 {
		t.Fatalf("Emotions = %v, want empty map", rec.Emotions)
	}
	if rec.Intent.Type != models.IntentUnknown || rec.Intent.Confidence != 0.0 {
		t.Fatalf("Intent = %+v, want unknown/0.0", rec.Intent)
	}
	if rec.Urgency.Level != models.UrgencyMedium {
		t.Fatalf("Urgency.Level = %q, want medium", rec.Urgency.Level)
	}
	if rec.Urgency.Indicators == nil {
		t.Fatal("Urgency.Indicators is nil, want empty slice")
	}
	if rec.Entities.Products == nil || rec.Entities.Features == nil || rec.Entities.Issues == nil {
		t.Fatalf("Entities = %+v, want empty slices", rec.Entities)
	}
}

func TestValidateResultParsesOptionalSections(t *testing.T) {
	raw := validRaw()
	raw["aspect_sentiments"] = map[string]interface{}{
		"pricing": map[string]interface{}{"score": -0.4, "mention_count": float64(2)},
	}
	raw["emotions"] = map[string]interface{}{"Anger": 0.9, "joy": 0.1}
	raw["intent"] = map[string]interface{}{"type": "Complaint", "confidence": 0.8}
	raw["urgency"] = map[string]interface{}{"level": "CRITICAL", "indicators": []interface{}{"outage"}}
	raw["key_phrases"] = []interface{}{"billing page", " ", "refund"}
	raw["entities"] = map[string]interface{}{
		"products": []interface{}{"Widget"},
		"issues":   []interface{}{"crash"},
	}

	rec, err := ValidateResult(raw, Config{})
	if err != nil {
		t.Fatalf("ValidateResult() error = %v", err)
	}

	if got := rec.AspectSentiments["pricing"]; got.Score != -0.4 || got.MentionCount != 2 {
		t.Fatalf("pricing aspect = %+v", got)
	}
	if rec.Emotions["anger"] != 0.9 {
		t.Fatalf("emotions = %v, want lower-cased anger 0.9", rec.Emotions)
	}
	if rec.Intent.Type != models.IntentComplaint || rec.Intent.Confidence != 0.8 {
		t.Fatalf("intent = %+v", rec.Intent)
	}
	if rec.Urgency.Level != models.UrgencyCritical {
		t.Fatalf("urgency level = %q", rec.Urgency.Level)
	}
	if len(rec.KeyPhrases) != 2 {
		t.Fatalf("key phrases = %v, want blank entries dropped", rec.KeyPhrases)
	}
	if len(rec.Entities.Products) != 1 || len(rec.Entities.Issues) != 1 || len(rec.Entities.Features) != 0 {
		t.Fatalf("entities = %+v", rec.Entities)
	}
}
