package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/analysis"
	"github.com/feedbacklens/backend/pkg/logger"
)

// WebSocketHandler streams per-item progress of a bulk analysis run so
// dashboards can show live batch status instead of waiting on one response.
type WebSocketHandler struct {
	runner *analysis.Runner
}

func NewWebSocketHandler(runner *analysis.Runner) *WebSocketHandler {
	return &WebSocketHandler{runner: runner}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type              string                `json:"type"`
			FeedbackIDs       []string              `json:"feedback_ids"`
			TargetLanguage    string                `json:"target_language"`
			TranslateContent  bool                  `json:"translate_content"`
			AnalysisDepth     string                `json:"analysis_depth"`
			CustomFlags       *analysis.CustomFlags `json:"custom_flags"`
			OverwriteExisting bool                  `json:"overwrite_existing"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "bulk_analyze" {
			continue
		}

		cfg, err := (&analyzeRequest{
			TargetLanguage:   msg.TargetLanguage,
			TranslateContent: msg.TranslateContent,
			AnalysisDepth:    msg.AnalysisDepth,
			CustomFlags:      msg.CustomFlags,
		}).toConfig()
		if err != nil {
			h.sendError(c, err.Error())
			continue
		}

		result, err := h.runner.RunBatch(context.Background(), msg.FeedbackIDs, cfg, msg.OverwriteExisting,
			func(index int, feedbackID, status, message string) {
				frame := map[string]interface{}{
					"type":        "item",
					"index":       index,
					"feedback_id": feedbackID,
					"status":      status,
				}
				if message != "" {
					frame["message"] = message
				}
				if err := c.WriteJSON(frame); err != nil {
					logger.Debug("Failed to write progress frame", zap.Error(err))
				}
			},
		)
		if err != nil {
			h.sendError(c, err.Error())
			continue
		}

		if err := c.WriteJSON(map[string]interface{}{
			"type":         "complete",
			"attempted":    result.Attempted,
			"succeeded":    result.Succeeded,
			"skipped":      result.Skipped,
			"failed_count": result.FailedCount(),
		}); err != nil {
			logger.Debug("Failed to write completion frame", zap.Error(err))
			break
		}
	}
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, message string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": message,
	})
}
