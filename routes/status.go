package routes

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"active": true,
	})
}
