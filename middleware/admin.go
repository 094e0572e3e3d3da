package middleware

import (
	"github.com/gofiber/fiber/v2"

	"flota-municipal-api/models"
)

func IsAdmin(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Solo los administradores pueden acceder a esta ruta",
		})
	}
	return c.Next()
}
