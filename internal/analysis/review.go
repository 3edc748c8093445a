package analysis

import "github.com/feedbacklens/backend/internal/storage/models"

// RequiresReview decides whether a human must check an AI-produced result
// before it is trusted. Pure function of the validated record; rules run in
// a fixed order and short-circuit on the first match. A nil record fails
// open: review required.
func RequiresReview(rec *models.AnalysisRecord) bool {
	if rec == nil {
		return true
	}

	// Rule 1: the model itself is unsure.
	if rec.Confidence < 0.5 {
		return true
	}

	// Rule 2: ambiguous/neutral sentiment band.
	if rec.OverallScore >= -0.3 && rec.OverallScore <= 0.3 {
		return true
	}

	// Rule 3: critical urgency always goes to a human.
	if rec.Urgency.Level == models.UrgencyCritical {
		return true
	}

	// Rule 4: strongly negative and angry.
	if rec.OverallScore < -0.8 && rec.Emotions["anger"] > 0.8 {
		return true
	}

	return false
}
