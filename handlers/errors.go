// handlers/errors.go
package handlers

import (
	"errors"
	"log"

	"github.com/swagdogge/intramon-collectible-game/models"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps the business error taxonomy onto HTTP statuses.
// Precondition failures are expected outcomes, not faults; only unknown
// errors get logged and masked.
func serviceError(c *fiber.Ctx, err error) error {
	var throttled *models.ThrottledError
	switch {
	case errors.Is(err, models.ErrPlayerNotFound),
		errors.Is(err, models.ErrInstanceNotFound),
		errors.Is(err, models.ErrGiftNotFound),
		errors.Is(err, models.ErrCodeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrNotOwned):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrCodeExpired):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrAlreadyClaimed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &throttled):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":               throttled.Error(),
			"retry_after_seconds": int(throttled.RetryAfter.Seconds()) + 1,
		})
	case errors.Is(err, models.ErrTransient):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporary storage conflict, please retry"})
	default:
		log.Printf("❌ Unhandled service error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
