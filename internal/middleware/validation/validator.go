package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxBatchSize        int
	MaxContentLength    int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

// Middleware rejects malformed analysis requests before they reach the
// pipeline. The batch-size cap in particular must fail fast here so an
// oversized bulk request never starts a partial run.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = 50
	}
	if cfg.MaxContentLength == 0 {
		cfg.MaxContentLength = 100000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"error": "Unsupported content type",
					})
				}
			}
		}

		path := c.Path()

		if strings.HasSuffix(path, "/analyze/bulk") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			ids, ok := req["feedback_ids"].([]interface{})
			if !ok || len(ids) == 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "feedback_ids is required and must be a non-empty list",
				})
			}

			if len(ids) > cfg.MaxBatchSize {
				if cfg.Logger != nil {
					cfg.Logger.Warn("Bulk analysis request over batch limit",
						zap.Int("requested", len(ids)),
						zap.Int("limit", cfg.MaxBatchSize),
					)
				}
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "feedback_ids exceeds the maximum batch size",
					"limit": cfg.MaxBatchSize,
				})
			}
		} else if strings.HasSuffix(path, "/analyze") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			id, ok := req["feedback_id"].(string)
			if !ok || strings.TrimSpace(id) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "feedback_id is required and must be a string",
				})
			}
		}

		if strings.HasSuffix(path, "/feedback") && c.Method() == fiber.MethodPost {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid JSON format",
				})
			}

			content, ok := req["content"].(string)
			if !ok || strings.TrimSpace(content) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "content is required and must be a non-empty string",
				})
			}

			if len(content) > cfg.MaxContentLength {
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": "content exceeds maximum length",
				})
			}
		}

		return c.Next()
	}
}
