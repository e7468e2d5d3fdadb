// handlers/monster_routes.go
package handlers

import (
	"errors"

	"github.com/swagdogge/intramon-collectible-game/catalog"
	"github.com/swagdogge/intramon-collectible-game/middleware"
	"github.com/swagdogge/intramon-collectible-game/models"
	"github.com/swagdogge/intramon-collectible-game/services"

	"github.com/gofiber/fiber/v2"
)

// SetupMonsterRoutes registers the player-facing surface: profile, inbox
// promotion, gifting, code redemption and crystal refresh. Identity comes
// from the gateway headers via PlayerContextMiddleware.
func SetupMonsterRoutes(
	app *fiber.App,
	players *services.PlayerService,
	inventory *services.InventoryService,
	gifts *services.GiftService,
	grants *services.GrantService,
	crystals *services.CrystalService,
	presence services.PresenceAPI,
	cat catalog.Provider,
) {
	group := app.Group("/", middleware.PlayerContextMiddleware())

	group.Get("/my-monsters", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)
		playerName, _ := c.Locals("player_name").(string)

		player, err := players.EnsurePlayer(playerID, playerName)
		if err != nil {
			return serviceError(c, err)
		}
		collection, err := inventory.Collection(playerID)
		if err != nil {
			return serviceError(c, err)
		}
		inbox, err := inventory.Inbox(playerID)
		if err != nil {
			return serviceError(c, err)
		}

		return c.JSON(fiber.Map{
			"id":            player.ID,
			"name":          player.Name,
			"monster_count": player.MonsterCount,
			"crystals":      player.Crystals,
			"monsters":      enrichAll(cat, collection),
			"inbox":         enrichAll(cat, inbox),
		})
	})

	group.Post("/inbox/claim/:instanceId", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)
		instanceID := c.Params("instanceId")

		if err := inventory.PromoteOne(playerID, instanceID); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Monster claimed", "instance_id": instanceID})
	})

	group.Post("/inbox/claim-all", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		if err := inventory.PromoteAll(playerID); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Inbox claimed"})
	})

	group.Post("/gift", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		var req struct {
			ToPlayerID string `json:"to_player_id"`
			InstanceID string `json:"instance_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.ToPlayerID == "" || req.InstanceID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to_player_id and instance_id are required"})
		}

		gift, err := gifts.Gift(playerID, req.ToPlayerID, req.InstanceID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Monster successfully gifted!", "gift": gift})
	})

	group.Get("/my-gifts", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		received, err := gifts.RecentGifts(playerID, 10)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(received)
	})

	group.Delete("/gift/:giftId", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		if err := gifts.DismissGift(c.Params("giftId"), playerID); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Gift removed"})
	})

	group.Post("/codes/redeem", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		var req struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&req); err != nil || req.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code is required"})
		}

		inst, err := grants.RedeemCode(playerID, req.Code)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Code redeemed — check your inbox!",
			"monster": catalog.Enrich(cat, *inst),
		})
	})

	group.Post("/crystals/refresh", func(c *fiber.Ctx) error {
		playerID := c.Locals("player_id").(string)

		hours, err := presence.TotalPresenceHours(c.Context(), playerID)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "presence service unavailable",
				"cause": err.Error(),
			})
		}

		result, err := crystals.Accrue(playerID, hours)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(result)
	})

	group.Get("/find-player/:username", func(c *fiber.Ctx) error {
		player, err := players.FindByName(c.Params("username"))
		if err != nil {
			if errors.Is(err, models.ErrPlayerNotFound) {
				return c.JSON(fiber.Map{"exists": false})
			}
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"exists": true, "player_id": player.ID})
	})
}

func enrichAll(cat catalog.Provider, instances []models.MonsterInstance) []catalog.EnrichedMonster {
	enriched := make([]catalog.EnrichedMonster, len(instances))
	for i, inst := range instances {
		enriched[i] = catalog.Enrich(cat, inst)
	}
	return enriched
}
