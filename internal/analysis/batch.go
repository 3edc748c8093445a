package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/metrics"
	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/pkg/logger"
)

// Store is the persistence capability the runner needs: load a feedback item
// and atomically save one analysis outcome per item.
type Store interface {
	GetFeedback(ctx context.Context, id string) (*models.FeedbackItem, error)
	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) (created bool, err error)
}

// ProgressFunc receives per-item progress during a batch run. status is one
// of "succeeded", "skipped", "failed".
type ProgressFunc func(index int, feedbackID, status, message string)

// Runner drives the orchestrator for single items and bounded batches. Both
// the HTTP single-item path and the bulk path go through the same code so the
// two policies cannot drift.
type Runner struct {
	orch         *Orchestrator
	store        Store
	maxBatchSize int
}

func NewRunner(orch *Orchestrator, store Store, maxBatchSize int) *Runner {
	if maxBatchSize <= 0 {
		maxBatchSize = 50
	}
	return &Runner{
		orch:         orch,
		store:        store,
		maxBatchSize: maxBatchSize,
	}
}

// AnalyzeOne loads, analyzes and persists a single feedback item. created
// reports whether this was the item's first analysis or an overwrite.
func (r *Runner) AnalyzeOne(ctx context.Context, feedbackID string, cfg Config) (rec *models.AnalysisRecord, created bool, err error) {
	feedback, err := r.store.GetFeedback(ctx, feedbackID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load feedback %s: %w", feedbackID, err)
	}

	rec, err = r.orch.Run(ctx, feedback, cfg)
	if err != nil {
		return nil, false, err
	}

	created, err = r.store.SaveAnalysis(ctx, rec)
	if err != nil {
		return nil, false, fmt.Errorf("failed to persist analysis for feedback %s: %w", feedbackID, err)
	}

	return rec, created, nil
}

// RunBatch analyzes up to maxBatchSize feedback items sequentially. Oversized
// requests fail before any item is processed. Items already analyzed are
// skipped (not counted as attempts) unless overwrite is set. A failure on one
// item is recorded against its id and never aborts the rest of the run.
func (r *Runner) RunBatch(ctx context.Context, feedbackIDs []string, cfg Config, overwrite bool, progress ProgressFunc) (*models.BatchResult, error) {
	if len(feedbackIDs) > r.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items requested, limit is %d", ErrBatchTooLarge, len(feedbackIDs), r.maxBatchSize)
	}

	result := &models.BatchResult{PerItemErrors: []models.BatchItemError{}}

	report := func(i int, id, status, message string) {
		metrics.BatchItemsTotal.WithLabelValues(status).Inc()
		if progress != nil {
			progress(i, id, status, message)
		}
	}

	for i, id := range feedbackIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		feedback, err := r.store.GetFeedback(ctx, id)
		if err != nil {
			result.Attempted++
			result.PerItemErrors = append(result.PerItemErrors, models.BatchItemError{
				FeedbackID: id,
				ErrorKind:  ErrorKind(err),
				Message:    err.Error(),
			})
			report(i, id, "failed", err.Error())
			continue
		}

		if !overwrite && feedback.AIAnalyzed {
			result.Skipped++
			report(i, id, "skipped", "")
			continue
		}

		result.Attempted++

		rec, err := r.orch.Run(ctx, feedback, cfg)
		if err == nil {
			_, err = r.store.SaveAnalysis(ctx, rec)
		}
		if err != nil {
			result.PerItemErrors = append(result.PerItemErrors, models.BatchItemError{
				FeedbackID: id,
				ErrorKind:  ErrorKind(err),
				Message:    err.Error(),
			})
			report(i, id, "failed", err.Error())
			continue
		}

		result.Succeeded++
		report(i, id, "succeeded", "")
	}

	logger.Info("Batch analysis finished",
		zap.Int("requested", len(feedbackIDs)),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.FailedCount()),
	)

	return result, nil
}
