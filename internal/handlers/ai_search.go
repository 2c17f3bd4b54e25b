package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tungra/internal/models"
	"tungra/internal/services"
)

// AISearchHandler handles question answering over the lore archive
type AISearchHandler struct {
	aiSearchService *services.AISearchService
}

// NewAISearchHandler creates a new AI search handler
func NewAISearchHandler(aiSearchService *services.AISearchService) *AISearchHandler {
	return &AISearchHandler{
		aiSearchService: aiSearchService,
	}
}

// Search answers a question grounded in the lore archive
// POST /api/ai-search
func (h *AISearchHandler) Search(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	question := strings.TrimSpace(req.Query)
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	userID, _ := c.Locals("user_id").(string)

	result, err := h.aiSearchService.Answer(c.Context(), question, userID)
	if err != nil {
		var pipelineErr *services.PipelineError
		if errors.As(err, &pipelineErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": pipelineErr.Error(),
			})
		}
		log.Printf("❌ AI search failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while processing your question.",
		})
	}

	return c.JSON(models.AISearchResponse{
		Answer: result.Text,
	})
}
