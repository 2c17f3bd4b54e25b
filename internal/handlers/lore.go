package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tungra/internal/models"
	"tungra/internal/services"
)

// LoreHandler handles lore entry CRUD and semantic search endpoints
type LoreHandler struct {
	loreService *services.LoreService
	embedder    services.Embedder
	retriever   services.Retriever
	defaultK    int
	maxK        int
}

// NewLoreHandler creates a new lore handler
func NewLoreHandler(loreService *services.LoreService, embedder services.Embedder, retriever services.Retriever, defaultK, maxK int) *LoreHandler {
	return &LoreHandler{
		loreService: loreService,
		embedder:    embedder,
		retriever:   retriever,
		defaultK:    defaultK,
		maxK:        maxK,
	}
}

// ListEntries returns all lore entries
// GET /api/lore
func (h *LoreHandler) ListEntries(c *fiber.Ctx) error {
	entries, err := h.loreService.ListEntries(context.Background())
	if err != nil {
		log.Printf("❌ Failed to list lore entries: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching lore entries",
		})
	}

	return c.JSON(entries)
}

// GetEntry returns a single lore entry
// GET /api/lore/:id
func (h *LoreHandler) GetEntry(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lore entry ID",
		})
	}

	entry, err := h.loreService.GetEntry(context.Background(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lore entry not found",
			})
		}
		log.Printf("❌ Failed to get lore entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching lore entry",
		})
	}

	return c.JSON(entry)
}

// CreateEntry creates a new lore entry
// POST /api/lore (EDITOR/ADMIN)
func (h *LoreHandler) CreateEntry(c *fiber.Ctx) error {
	var req models.CreateLoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and description are required",
		})
	}
	if strings.TrimSpace(req.Writer) == "" {
		// Default the writer to the authenticated user
		if username, ok := c.Locals("user_name").(string); ok {
			req.Writer = username
		}
	}

	entry, err := h.loreService.CreateEntry(context.Background(), &req)
	if err != nil {
		log.Printf("❌ Failed to create lore entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error adding lore entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Lore added successfully",
		"lore":    entry,
	})
}

// UpdateEntry updates a lore entry's text and re-embeds it
// PUT /api/lore/:id (EDITOR/ADMIN)
func (h *LoreHandler) UpdateEntry(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lore entry ID",
		})
	}

	var req models.UpdateLoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and description are required",
		})
	}

	entry, err := h.loreService.UpdateEntry(context.Background(), id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lore entry not found",
			})
		}
		log.Printf("❌ Failed to update lore entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error updating lore entry",
		})
	}

	return c.JSON(entry)
}

// DeleteEntry deletes a lore entry
// DELETE /api/lore/:id (EDITOR/ADMIN)
func (h *LoreHandler) DeleteEntry(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lore entry ID",
		})
	}

	if err := h.loreService.DeleteEntry(context.Background(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lore entry not found",
			})
		}
		log.Printf("❌ Failed to delete lore entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error deleting lore entry",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lore entry deleted successfully",
	})
}

// Search performs plain semantic search over the lore collection
// POST /api/lore/search
func (h *LoreHandler) Search(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	k := req.Limit
	if k <= 0 {
		k = h.defaultK
	}
	if k > h.maxK {
		k = h.maxK
	}

	ctx := c.Context()

	embedding, err := h.embedder.Embed(ctx, req.Query)
	if err != nil {
		log.Printf("❌ Search embedding failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error performing search",
		})
	}

	chunks, err := h.retriever.Retrieve(ctx, req.Query, embedding, k)
	if err != nil {
		log.Printf("❌ Search retrieval failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error performing search",
		})
	}

	if chunks == nil {
		chunks = []models.RetrievedChunk{}
	}
	return c.JSON(chunks)
}
