package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"tungra/pkg/auth"
)

func newTestApp(t *testing.T) (*fiber.App, *auth.JWTAuth) {
	jwtAuth, err := auth.NewJWTAuth("test-secret-key-for-tests-only", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create JWT auth: %v", err)
	}

	app := fiber.New()
	app.Get("/protected", AuthMiddleware(jwtAuth), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("user_role"),
		})
	})
	app.Post("/editor-only", AuthMiddleware(jwtAuth), RequireRoles("EDITOR", "ADMIN"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/admin-only", AuthMiddleware(jwtAuth), RequireRoles("ADMIN"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app, jwtAuth
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	app, jwtAuth := newTestApp(t)

	token, err := jwtAuth.GenerateToken("user-1", "keeper", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	app, jwtAuth := newTestApp(t)

	for _, role := range []string{"EDITOR", "ADMIN"} {
		token, err := jwtAuth.GenerateToken("user-1", "keeper", role)
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}

		req := httptest.NewRequest("POST", "/editor-only", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("Role %s should pass, got %d", role, resp.StatusCode)
		}
	}
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	app, jwtAuth := newTestApp(t)

	token, err := jwtAuth.GenerateToken("user-1", "reader", "USER")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/editor-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestRequireRolesEditorCannotReachAdmin(t *testing.T) {
	app, jwtAuth := newTestApp(t)

	token, err := jwtAuth.GenerateToken("user-1", "keeper", "EDITOR")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}
