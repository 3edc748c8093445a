package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/pkg/logger"
)

// FeedbackStore is the storage surface the feedback endpoints need.
type FeedbackStore interface {
	InsertFeedback(ctx context.Context, fb *models.FeedbackItem) error
	GetFeedback(ctx context.Context, id string) (*models.FeedbackItem, error)
}

type FeedbackHandler struct {
	store FeedbackStore
}

func NewFeedbackHandler(store FeedbackStore) *FeedbackHandler {
	return &FeedbackHandler{store: store}
}

// HandleCreateFeedback ingests one feedback item so it can be analyzed.
func (h *FeedbackHandler) HandleCreateFeedback(c *fiber.Ctx) error {
	var req struct {
		ID               string `json:"id"`
		OrgID            string `json:"org_id"`
		Content          string `json:"content"`
		OriginalLanguage string `json:"original_language"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if strings.TrimSpace(req.Content) == "" || req.OrgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id and content are required",
		})
	}

	fb := &models.FeedbackItem{
		ID:               req.ID,
		OrgID:            req.OrgID,
		Content:          req.Content,
		OriginalLanguage: req.OriginalLanguage,
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}

	if err := h.store.InsertFeedback(c.Context(), fb); err != nil {
		logger.Error("Failed to insert feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store feedback",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     fb.ID,
		"org_id": fb.OrgID,
	})
}

// HandleGetFeedback returns one feedback item with its quick-reference
// analysis fields.
func (h *FeedbackHandler) HandleGetFeedback(c *fiber.Ctx) error {
	id := c.Params("id")

	fb, err := h.store.GetFeedback(c.Context(), id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fb)
}
