// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PlayerContextMiddleware extracts the player identity set by the auth
// gateway after the third-party OAuth handshake. This service never sees
// tokens or cookies; it trusts the gateway's forwarded headers.
func PlayerContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		playerID := c.Get("X-Player-ID")
		playerName := c.Get("X-Player-Name")
		rolesStr := c.Get("X-Player-Roles")

		if playerID == "" {
			log.Printf("❌ [PLAYER_CTX] X-Player-ID missing on %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Player-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		if rolesStr != "" {
			for _, r := range strings.Split(rolesStr, ",") {
				r = strings.TrimSpace(r)
				if r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Locals("player_id", playerID)
		c.Locals("player_name", playerName)
		c.Locals("player_roles", roles)

		return c.Next()
	}
}

// HasRole reports whether the gateway granted the request a role.
func HasRole(c *fiber.Ctx, role string) bool {
	roles, _ := c.Locals("player_roles").([]string)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
