package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/analysis"
	"github.com/feedbacklens/backend/internal/oracle"
	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/pkg/logger"
)

// RecordStore exposes stored analysis records to the read/delete endpoints.
type RecordStore interface {
	GetAnalysisByFeedback(ctx context.Context, feedbackID string) (*models.AnalysisRecord, error)
	DeleteAnalysis(ctx context.Context, feedbackID string) error
}

type AnalysisHandler struct {
	runner *analysis.Runner
	store  RecordStore
}

func NewAnalysisHandler(runner *analysis.Runner, store RecordStore) *AnalysisHandler {
	return &AnalysisHandler{runner: runner, store: store}
}

type analyzeRequest struct {
	FeedbackID       string                `json:"feedback_id"`
	TargetLanguage   string                `json:"target_language"`
	TranslateContent bool                  `json:"translate_content"`
	AnalysisDepth    string                `json:"analysis_depth"`
	CustomFlags      *analysis.CustomFlags `json:"custom_flags"`
}

func (r *analyzeRequest) toConfig() (analysis.Config, error) {
	cfg, err := analysis.ConfigForDepth(analysis.Depth(r.AnalysisDepth), r.CustomFlags)
	if err != nil {
		return analysis.Config{}, err
	}

	cfg.TargetLanguage = r.TargetLanguage
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = "en"
	}
	cfg.TranslateContent = r.TranslateContent
	return cfg, nil
}

// HandleAnalyze runs the pipeline for a single feedback item and persists the
// outcome.
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return failAnalyze(c, fiber.StatusBadRequest, "", "invalid request body", analysis.KindValueError)
	}

	if req.FeedbackID == "" {
		return failAnalyze(c, fiber.StatusBadRequest, "", "feedback_id is required", analysis.KindValueError)
	}

	cfg, err := req.toConfig()
	if err != nil {
		return failAnalyze(c, fiber.StatusBadRequest, req.FeedbackID, err.Error(), analysis.KindValueError)
	}

	rec, created, err := h.runner.AnalyzeOne(c.Context(), req.FeedbackID, cfg)
	if err != nil {
		logger.Error("Analysis failed",
			zap.String("feedback_id", req.FeedbackID),
			zap.Error(err),
		)
		return failAnalyze(c, statusForError(err), req.FeedbackID, err.Error(), analysis.ErrorKind(err))
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"feedback_id":       rec.FeedbackID,
		"analysis_id":       rec.ID,
		"sentiment_label":   rec.OverallLabel,
		"sentiment_score":   rec.OverallScore,
		"confidence":        rec.Confidence,
		"requires_review":   rec.RequiresHumanReview,
		"analysis_language": rec.AnalysisLanguage,
		"translated":        rec.TranslatedContent != nil,
		"created":           created,
	})
}

type bulkAnalyzeRequest struct {
	FeedbackIDs       []string              `json:"feedback_ids"`
	TargetLanguage    string                `json:"target_language"`
	TranslateContent  bool                  `json:"translate_content"`
	AnalysisDepth     string                `json:"analysis_depth"`
	CustomFlags       *analysis.CustomFlags `json:"custom_flags"`
	OverwriteExisting bool                  `json:"overwrite_existing"`
}

// HandleBulkAnalyze runs the pipeline over a bounded set of feedback items.
// Oversized batches are rejected before any item is processed; per-item
// failures never abort the run.
func (h *AnalysisHandler) HandleBulkAnalyze(c *fiber.Ctx) error {
	var req bulkAnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return failAnalyze(c, fiber.StatusBadRequest, "", "invalid request body", analysis.KindValueError)
	}

	if len(req.FeedbackIDs) == 0 {
		return failAnalyze(c, fiber.StatusBadRequest, "", "feedback_ids is required", analysis.KindValueError)
	}

	cfg, err := (&analyzeRequest{
		TargetLanguage:   req.TargetLanguage,
		TranslateContent: req.TranslateContent,
		AnalysisDepth:    req.AnalysisDepth,
		CustomFlags:      req.CustomFlags,
	}).toConfig()
	if err != nil {
		return failAnalyze(c, fiber.StatusBadRequest, "", err.Error(), analysis.KindValueError)
	}

	result, err := h.runner.RunBatch(c.Context(), req.FeedbackIDs, cfg, req.OverwriteExisting, nil)
	if err != nil {
		status := statusForError(err)
		logger.Error("Bulk analysis rejected", zap.Error(err))
		return failAnalyze(c, status, "", err.Error(), analysis.ErrorKind(err))
	}

	return c.JSON(fiber.Map{
		"attempted":    result.Attempted,
		"succeeded":    result.Succeeded,
		"skipped":      result.Skipped,
		"failed_count": result.FailedCount(),
		"errors":       result.PerItemErrors,
		"summary": fmt.Sprintf("Analyzed %d of %d attempted items (%d failed, %d skipped)",
			result.Succeeded, result.Attempted, result.FailedCount(), result.Skipped),
	})
}

// HandleGetAnalysis returns the current analysis record for a feedback item.
func (h *AnalysisHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	feedbackID := c.Params("feedbackID")

	rec, err := h.store.GetAnalysisByFeedback(c.Context(), feedbackID)
	if err != nil {
		return failAnalyze(c, statusForError(err), feedbackID, err.Error(), analysis.ErrorKind(err))
	}

	return c.JSON(rec)
}

// HandleDeleteAnalysis removes a feedback item's analysis and resets its
// quick-reference fields.
func (h *AnalysisHandler) HandleDeleteAnalysis(c *fiber.Ctx) error {
	feedbackID := c.Params("feedbackID")

	if err := h.store.DeleteAnalysis(c.Context(), feedbackID); err != nil {
		return failAnalyze(c, statusForError(err), feedbackID, err.Error(), analysis.ErrorKind(err))
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"feedback_id": feedbackID,
	})
}

func failAnalyze(c *fiber.Ctx, status int, feedbackID, message, kind string) error {
	payload := fiber.Map{
		"success":    false,
		"message":    message,
		"error_kind": kind,
	}
	if feedbackID != "" {
		payload["feedback_id"] = feedbackID
	}
	return c.Status(status).JSON(payload)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, oracle.ErrNotConfigured):
		return fiber.StatusServiceUnavailable
	case analysis.ErrorKind(err) == analysis.KindValueError:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
