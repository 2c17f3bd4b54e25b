package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tungra/internal/models"
	"tungra/internal/services"
	"tungra/pkg/auth"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	jwtAuth     *auth.JWTAuth
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtAuth *auth.JWTAuth, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		jwtAuth:     jwtAuth,
		userService: userService,
	}
}

// Login authenticates a user
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username and password are required",
		})
	}

	ctx := context.Background()

	user, err := h.userService.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		// Constant-time response to prevent username enumeration
		time.Sleep(200 * time.Millisecond)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !valid {
		log.Printf("⚠️ Failed login attempt for user: %s", req.Username)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := h.userService.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("⚠️ Failed to update last login time: %v", err)
		// Non-critical, continue
	}

	token, err := h.jwtAuth.GenerateToken(user.ID.Hex(), user.Username, user.Role)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate authentication token",
		})
	}

	log.Printf("✅ User logged in: %s (%s)", user.Username, user.ID.Hex())

	return c.JSON(models.LoginResponse{
		Token: token,
		User:  user.ToResponse(),
	})
}

// GetCurrentUser returns the currently authenticated user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	user, err := h.userService.GetUserByID(context.Background(), objID)
	if err != nil || user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user.ToResponse())
}
