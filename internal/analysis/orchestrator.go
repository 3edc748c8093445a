package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/ingest"
	"github.com/feedbacklens/backend/internal/metrics"
	"github.com/feedbacklens/backend/internal/nlp"
	"github.com/feedbacklens/backend/internal/oracle"
	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/pkg/logger"
	"github.com/feedbacklens/backend/pkg/retry"
)

// AnalysisOracle is the capability the orchestrator needs from the
// text-analysis oracle.
type AnalysisOracle interface {
	Analyze(ctx context.Context, text, language string, flags oracle.RequestFlags) (oracle.RawResult, error)
	Model() string
}

// Translator is the capability needed from the translation oracle.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
	DetectLanguage(ctx context.Context, text string) string
	IsConfigured() bool
}

// Orchestrator runs one feedback item through translation, the analysis
// oracle, validation and the review decision. It performs no persistence;
// callers save the returned record.
type Orchestrator struct {
	oracle     AnalysisOracle
	translator Translator
	attempts   int
	baseDelay  time.Duration
}

func NewOrchestrator(o AnalysisOracle, t Translator, attempts int, baseDelay time.Duration) *Orchestrator {
	if attempts <= 0 {
		attempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Orchestrator{
		oracle:     o,
		translator: t,
		attempts:   attempts,
		baseDelay:  baseDelay,
	}
}

// Run analyzes one feedback item. Translation is best-effort: on failure the
// pipeline logs and proceeds with the original content. Only malformed oracle
// replies are retried; the backoff grows per attempt and cancellation is
// honored between attempts.
func (orc *Orchestrator) Run(ctx context.Context, feedback *models.FeedbackItem, cfg Config) (*models.AnalysisRecord, error) {
	start := time.Now()

	content := ingest.PlainText(feedback.Content)

	originalLang := feedback.OriginalLanguage
	if originalLang == "" && orc.translator.IsConfigured() {
		originalLang = orc.translator.DetectLanguage(ctx, content)
	}

	analysisLang := originalLang
	var translatedContent *string

	if cfg.TranslateContent && cfg.TargetLanguage != "" && cfg.TargetLanguage != originalLang {
		if orc.translator.IsConfigured() {
			source := originalLang
			if source == "" {
				source = "auto"
			}
			translated, err := orc.translator.Translate(ctx, content, source, cfg.TargetLanguage)
			if err != nil {
				metrics.TranslationRequestsTotal.WithLabelValues("error").Inc()
				logger.Warn("Translation failed, analyzing original content",
					zap.String("feedback_id", feedback.ID),
					zap.Error(err),
				)
			} else {
				metrics.TranslationRequestsTotal.WithLabelValues("success").Inc()
				content = translated
				translatedContent = &translated
				analysisLang = cfg.TargetLanguage
			}
		} else {
			logger.Debug("Translation requested but gateway not configured",
				zap.String("feedback_id", feedback.ID),
			)
		}
	}

	flags := oracle.RequestFlags{
		DetectAspects:     cfg.DetectAspects,
		DetectEmotions:    cfg.DetectEmotions,
		DetectIntent:      cfg.DetectIntent,
		ExtractKeyPhrases: cfg.ExtractKeyPhrases,
	}

	raw, err := retry.DoWithResult(ctx, retry.Config{
		MaxAttempts:     orc.attempts,
		InitialDelay:    orc.baseDelay,
		Multiplier:      2.0,
		RetryableErrors: []error{oracle.ErrMalformedResponse},
		Logger:          logger.Log,
	}, func() (oracle.RawResult, error) {
		result, callErr := orc.oracle.Analyze(ctx, content, analysisLang, flags)
		if callErr != nil {
			metrics.OracleAttemptsTotal.WithLabelValues("error").Inc()
		} else {
			metrics.OracleAttemptsTotal.WithLabelValues("success").Inc()
		}
		return result, callErr
	})
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("analysis of feedback %s failed: %w", feedback.ID, err)
	}

	rec, err := ValidateResult(raw, cfg)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("schema_error").Inc()
		return nil, fmt.Errorf("analysis of feedback %s failed: %w", feedback.ID, err)
	}

	if cfg.ExtractKeyPhrases && len(rec.KeyPhrases) == 0 {
		rec.KeyPhrases = nlp.KeyPhrases(content, 5)
	}

	rec.ID = uuid.NewString()
	rec.FeedbackID = feedback.ID
	rec.RequiresHumanReview = RequiresReview(rec)
	rec.TranslatedContent = translatedContent
	rec.AnalysisLanguage = analysisLang
	rec.OriginalLanguage = originalLang
	rec.ModelUsed = orc.oracle.Model()
	rec.ModelVersion = orc.oracle.Model()
	rec.Metadata = map[string]interface{}{
		"target_language":     cfg.TargetLanguage,
		"translated":          translatedContent != nil,
		"content_length":      len(content),
		"word_count":          nlp.WordCount(content),
		"detect_aspects":      cfg.DetectAspects,
		"detect_emotions":     cfg.DetectEmotions,
		"detect_intent":       cfg.DetectIntent,
		"extract_key_phrases": cfg.ExtractKeyPhrases,
	}

	if rec.RequiresHumanReview {
		metrics.ReviewFlaggedTotal.Inc()
	}
	metrics.ConfidenceScore.Observe(rec.Confidence)
	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	logger.Info("Feedback analyzed",
		zap.String("feedback_id", feedback.ID),
		zap.String("label", rec.OverallLabel),
		zap.Float64("score", rec.OverallScore),
		zap.Float64("confidence", rec.Confidence),
		zap.Bool("requires_review", rec.RequiresHumanReview),
	)

	return rec, nil
}
