// handlers/admin_routes.go
package handlers

import (
	"time"

	"github.com/swagdogge/intramon-collectible-game/catalog"
	"github.com/swagdogge/intramon-collectible-game/middleware"
	"github.com/swagdogge/intramon-collectible-game/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes registers the claim-code bootstrap endpoint. Creation is
// idempotent, so redeploying a bootstrap script that POSTs the same codes is
// harmless.
func SetupAdminRoutes(app *fiber.App, codes *services.ClaimCodeService, cat catalog.Provider) {
	adminGroup := app.Group("/admin", middleware.PlayerContextMiddleware())

	adminGroup.Post("/claim-codes", func(c *fiber.Ctx) error {
		if !middleware.HasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}

		var req struct {
			Code       string    `json:"code"`
			TemplateID string    `json:"template_id"`
			ExpiresAt  time.Time `json:"expires_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.Code == "" || req.TemplateID == "" || req.ExpiresAt.IsZero() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code, template_id and expires_at are required"})
		}
		if _, ok := cat.Resolve(req.TemplateID); !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown template_id"})
		}

		if err := codes.Create(req.Code, req.TemplateID, req.ExpiresAt); err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"code":        services.NormalizeCode(req.Code),
			"template_id": req.TemplateID,
			"expires_at":  req.ExpiresAt,
		})
	})

	adminGroup.Get("/claim-codes/:code/claimed-by", func(c *fiber.Ctx) error {
		if !middleware.HasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
		}

		claimedBy, err := codes.ClaimedBy(c.Params("code"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"claimed_by": claimedBy})
	})
}
