package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"flota-municipal-api/models"
	"flota-municipal-api/pkg"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

// Login devuelve un token de autenticación
func (h *Handler) Login(c *fiber.Ctx) error {
	var request loginRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Error al analizar el cuerpo de la solicitud",
		})
	}

	var user models.User
	err := h.DB.QueryRow("SELECT id, username, password, role, active FROM users WHERE username = ?", request.Username).
		Scan(&user.ID, &user.Username, &user.Password, &user.Role, &user.Active)
	if err != nil || !pkg.ComparePassword(user.Password, request.Password) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": "Usuario o contraseña incorrectos",
		})
	}
	if !user.Active {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"error": "El usuario está desactivado",
		})
	}

	token, err := pkg.GenerateToken(h.Config.JwtSecret, user.ID, user.Role)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Error al generar el token",
			"errorTrace": err.Error(),
		})
	}

	if _, err := h.DB.Exec("UPDATE users SET last_login_at = CURRENT_TIMESTAMP WHERE id = ?", user.ID); err != nil {
		log.Warn("No se pudo registrar el último acceso: ", err)
	}

	return c.JSON(authResponse{Token: token})
}

// Logout no invalida nada en el servidor: el token es stateless y el panel lo descarta
func (h *Handler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Sesión cerrada, descarta el token",
	})
}
