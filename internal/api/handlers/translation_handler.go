package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/analysis"
	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/internal/translation"
	"github.com/feedbacklens/backend/pkg/logger"
)

// TranslationStore is the storage surface the translate endpoint needs.
type TranslationStore interface {
	GetFeedback(ctx context.Context, id string) (*models.FeedbackItem, error)
	SaveTranslation(ctx context.Context, feedbackID, translated string) error
}

type TranslationHandler struct {
	gateway *translation.Gateway
	store   TranslationStore
}

func NewTranslationHandler(gateway *translation.Gateway, store TranslationStore) *TranslationHandler {
	return &TranslationHandler{gateway: gateway, store: store}
}

// HandleTranslate translates a feedback item's content on demand and stores
// the translated copy on the feedback record.
func (h *TranslationHandler) HandleTranslate(c *fiber.Ctx) error {
	var req struct {
		FeedbackID     string `json:"feedback_id"`
		TargetLanguage string `json:"target_language"`
	}

	if err := c.BodyParser(&req); err != nil {
		return failTranslate(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.FeedbackID == "" || req.TargetLanguage == "" {
		return failTranslate(c, fiber.StatusBadRequest, "feedback_id and target_language are required")
	}

	if !h.gateway.IsConfigured() {
		return failTranslate(c, fiber.StatusServiceUnavailable, "translation is not configured")
	}

	feedback, err := h.store.GetFeedback(c.Context(), req.FeedbackID)
	if err != nil {
		return failTranslate(c, statusForError(err), err.Error())
	}

	source := feedback.OriginalLanguage
	if source == "" {
		source = "auto"
	}

	translated, err := h.gateway.Translate(c.Context(), feedback.Content, source, req.TargetLanguage)
	if err != nil {
		logger.Error("Translation failed",
			zap.String("feedback_id", req.FeedbackID),
			zap.Error(err),
		)
		status := fiber.StatusBadGateway
		if analysis.ErrorKind(err) == analysis.KindValueError {
			status = fiber.StatusBadRequest
		}
		return failTranslate(c, status, err.Error())
	}

	if err := h.store.SaveTranslation(c.Context(), req.FeedbackID, translated); err != nil {
		return failTranslate(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"feedback_id":        req.FeedbackID,
		"translated_content": translated,
		"language_name":      translation.LanguageName(req.TargetLanguage),
	})
}

func failTranslate(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
