package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/reporting"
	"github.com/feedbacklens/backend/internal/storage/models"
	"github.com/feedbacklens/backend/pkg/logger"
)

// DashboardStore is the storage surface the dashboard endpoints need.
type DashboardStore interface {
	ListSentimentsByOrg(ctx context.Context, orgID string) ([]models.SentimentSample, error)
	CountFeedbackByOrg(ctx context.Context, orgID string) (int, error)
}

type DashboardHandler struct {
	store DashboardStore
}

func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// HandleSentimentDistribution aggregates an organization's stored sentiments
// into the canonical bucket distribution.
func (h *DashboardHandler) HandleSentimentDistribution(c *fiber.Ctx) error {
	orgID := c.Query("org_id")
	if orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "org_id is required",
		})
	}

	total, err := h.store.CountFeedbackByOrg(c.Context(), orgID)
	if err != nil {
		logger.Error("Failed to count feedback", zap.String("org_id", orgID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load feedback counts",
		})
	}

	samples, err := h.store.ListSentimentsByOrg(c.Context(), orgID)
	if err != nil {
		logger.Error("Failed to list sentiments", zap.String("org_id", orgID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load sentiment data",
		})
	}

	return c.JSON(fiber.Map{
		"org_id":         orgID,
		"total_feedback": total,
		"distribution":   reporting.SentimentDistribution(samples, total),
	})
}
