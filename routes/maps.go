package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"flota-municipal-api/pkg/geocode"
)

// Geocode hace de proxy a la geocodificación inversa de Google y devuelve su
// respuesta sin cambios.
func (h *Handler) Geocode(c *fiber.Ctx) error {
	latStr := strings.TrimSpace(c.Query("lat"))
	lngStr := strings.TrimSpace(c.Query("lng"))
	if latStr == "" || lngStr == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Los parámetros lat y lng son obligatorios",
		})
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Los parámetros lat y lng deben ser numéricos",
		})
	}

	ctx, cancel := h.backendContext(c)
	defer cancel()

	body, err := h.Geocoder.Reverse(ctx, lat, lng, c.Query("language", geocode.DefaultLanguage))
	switch {
	case errors.Is(err, geocode.ErrSinApiKey):
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "API key de Google Maps no configurada en el servidor",
		})
	case err != nil:
		log.Warn("Error en geocodificación: ", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al consultar la API de geocodificación",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (h *Handler) GetMapKey(c *fiber.Ctx) error {
	if h.Config.GoogleMapsApiKey == "" {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "API key de Google Maps no configurada",
		})
	}
	return c.JSON(fiber.Map{
		"apiKey": h.Config.GoogleMapsApiKey,
	})
}

// GetBackendEndpoint devuelve el endpoint tal cual está configurado
func (h *Handler) GetBackendEndpoint(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"endpoint": h.Config.BackendEndpoint,
	})
}
