package middleware

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"flota-municipal-api/pkg"
)

// ValidUserAndActive comprueba que el usuario del token existe (un
// administrador puede haberlo borrado) y que sigue activo. Deja user_id y
// el rol actual de la base en Locals, el del token puede estar desactualizado.
func ValidUserAndActive(conn *sql.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("jwt").(*jwt.Token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No tienes permisos para acceder a esta ruta",
			})
		}

		userID, _, err := pkg.GetUserFromToken(secret, token.Raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No tienes permisos para acceder a esta ruta",
			})
		}

		var role string
		err = conn.QueryRow("SELECT role FROM users WHERE id = ? AND active = 1", userID).Scan(&role)
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "El usuario actual no existe o fue desactivado por un administrador",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error al comprobar si el usuario existe",
			})
		}

		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	}
}
