package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by storage lookups for missing records.
var ErrNotFound = errors.New("record not found")

// Canonical sentiment labels. Storage and aggregation use these five values;
// legacy spellings found in historical rows are reconciled in reporting.
const (
	LabelVeryNegative = "very_negative"
	LabelNegative     = "negative"
	LabelNeutral      = "neutral"
	LabelPositive     = "positive"
	LabelVeryPositive = "very_positive"
)

const (
	IntentComplaint  = "complaint"
	IntentCompliment = "compliment"
	IntentSuggestion = "suggestion"
	IntentQuestion   = "question"
	IntentRequest    = "request"
	IntentUnknown    = "unknown"
)

const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// FeedbackItem is one piece of free-text customer feedback (ticket, survey
// answer, NPS comment). The analysis pipeline only writes the quick-reference
// fields after a successful analysis; everything else is owned elsewhere.
type FeedbackItem struct {
	ID                  string     `json:"id"`
	OrgID               string     `json:"org_id"`
	Content             string     `json:"content"`
	OriginalLanguage    string     `json:"original_language"`
	TranslatedContent   *string    `json:"translated_content,omitempty"`
	AIAnalyzed          bool       `json:"ai_analyzed"`
	AIAnalysisDate      *time.Time `json:"ai_analysis_date,omitempty"`
	SentimentScore      *float64   `json:"sentiment_score,omitempty"`
	SentimentLabel      string     `json:"sentiment_label,omitempty"`
	RequiresHumanReview bool       `json:"requires_human_review"`
	CreatedAt           time.Time  `json:"created_at"`
}

type AspectSentiment struct {
	Score        float64 `json:"score"`
	MentionCount int     `json:"mention_count"`
}

type Intent struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type Urgency struct {
	Level      string   `json:"level"`
	Indicators []string `json:"indicators"`
}

type Entities struct {
	Products []string `json:"products"`
	Features []string `json:"features"`
	Issues   []string `json:"issues"`
}

// AnalysisRecord is the validated, normalized outcome of analyzing one
// feedback item. At most one current record exists per feedback item;
// re-analysis overwrites in place.
type AnalysisRecord struct {
	ID                  string                     `json:"id"`
	FeedbackID          string                     `json:"feedback_id"`
	OverallScore        float64                    `json:"overall_score"`
	OverallLabel        string                     `json:"overall_label"`
	Confidence          float64                    `json:"confidence"`
	AspectSentiments    map[string]AspectSentiment `json:"aspect_sentiments"`
	Emotions            map[string]float64         `json:"emotions"`
	Intent              Intent                     `json:"intent"`
	Urgency             Urgency                    `json:"urgency"`
	KeyPhrases          []string                   `json:"key_phrases"`
	Entities            Entities                   `json:"entities"`
	RequiresHumanReview bool                       `json:"requires_human_review"`
	TranslatedContent   *string                    `json:"translated_content,omitempty"`
	AnalysisLanguage    string                     `json:"analysis_language"`
	OriginalLanguage    string                     `json:"original_language"`
	ModelUsed           string                     `json:"model_used"`
	ModelVersion        string                     `json:"model_version"`
	Metadata            map[string]interface{}     `json:"analysis_metadata"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

// BatchItemError attributes one failed batch item to its feedback id.
type BatchItemError struct {
	FeedbackID string `json:"feedback_id"`
	ErrorKind  string `json:"error_kind"`
	Message    string `json:"message"`
}

// BatchResult summarizes one bulk analysis run. Not persisted.
type BatchResult struct {
	Attempted     int              `json:"attempted"`
	Succeeded     int              `json:"succeeded"`
	Skipped       int              `json:"skipped"`
	PerItemErrors []BatchItemError `json:"errors"`
}

func (r *BatchResult) FailedCount() int {
	return len(r.PerItemErrors)
}

// SentimentSample is one feedback item's stored sentiment, as found in the
// quick-reference fields. Label may carry a legacy spelling; Score is nil for
// rows written before scores were recorded.
type SentimentSample struct {
	Label string
	Score *float64
}
