package routes

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"flota-municipal-api/config"
	"flota-municipal-api/pkg/backend"
	"flota-municipal-api/pkg/geocode"
	"flota-municipal-api/tracking"
)

// Tiempo máximo de una llamada al backend o a Google desde un handler
const WaitTime = 15 * time.Second

// Handler reúne las dependencias de todas las rutas de la API.
type Handler struct {
	Config   config.Config
	DB       *sql.DB
	Backend  *backend.Client
	Geocoder *geocode.Client
	Tracker  *tracking.Tracker
}

func (h *Handler) backendContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), WaitTime)
}
