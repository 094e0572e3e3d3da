package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"flota-municipal-api/pkg/backend"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// apiResponse replica el sobre del backend para que el panel lo lea igual
type apiResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Error   bool   `json:"error"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(apiResponse{Message: message, Data: data})
}

// backendError traduce un fallo del backend. Lo que no es un 4xx del backend
// se responde 502 con data vacía para que el panel muestre una lista vacía.
func backendError(c *fiber.Ctx, err error) error {
	var be *backend.Error
	switch {
	case errors.Is(err, backend.ErrSinEndpoint):
		return c.Status(http.StatusInternalServerError).JSON(apiResponse{
			Message: "Endpoint del backend no configurado",
			Data:    []any{},
			Error:   true,
		})
	case errors.Is(err, backend.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(apiResponse{
			Message: "Recurso no encontrado",
			Data:    []any{},
			Error:   true,
		})
	case errors.As(err, &be) && be.Status >= 400 && be.Status < 500:
		return c.Status(be.Status).JSON(apiResponse{
			Message: be.Message,
			Data:    []any{},
			Error:   true,
		})
	}

	log.WithField("request_id", c.Locals("request_id")).Warn("Error consultando el backend: ", err)
	return c.Status(http.StatusBadGateway).JSON(apiResponse{
		Message: "Error al consultar el backend",
		Data:    []any{},
		Error:   true,
	})
}
