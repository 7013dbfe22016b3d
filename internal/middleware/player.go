package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// EnsurePlayerID reads the player id from the X-Player-ID header or the
// playerId query parameter and stores it in c.Locals("playerID"). Ids must be
// UUIDs, which also keeps clients from posing as the AI player.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}
		id, err := uuid.Parse(playerID)
		if err != nil {
			log.Debugf("rejected player id %q: %v", playerID, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Player ID must be a UUID",
			})
		}

		c.Locals("playerID", id.String())
		return c.Next()
	}
}
