package routes

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"flota-municipal-api/pkg"
)

// GetAreaStatistics devuelve el semáforo de visitas de las áreas verdes
func (h *Handler) GetAreaStatistics(c *fiber.Ctx) error {
	ctx, cancel := h.backendContext(c)
	defer cancel()

	zonas, err := h.Backend.ListZonas(ctx)
	if err != nil {
		return backendError(c, err)
	}
	return respond(c, http.StatusOK, "Estadísticas de áreas verdes", pkg.CalculateAreaStatistics(zonas, time.Now()))
}

// GetBeaconAssignments devuelve los beacons con su asignación resuelta.
// ?q= busca por MAC, nombre o asignación.
func (h *Handler) GetBeaconAssignments(c *fiber.Ctx) error {
	ctx, cancel := h.backendContext(c)
	defer cancel()

	beacons, err := h.Backend.ListBeacons(ctx)
	if err != nil {
		return backendError(c, err)
	}
	out := pkg.FilterBySearch(pkg.WithAssignments(beacons), c.Query("q"), func(b pkg.BeaconConAsignacion) []string {
		return []string{b.Mac, b.Nombre, b.Asignacion.Nombre, b.Asignacion.Tipo}
	})
	return respond(c, http.StatusOK, "Beacons con asignación", out)
}

func (h *Handler) GetTeamStatus(c *fiber.Ctx) error {
	ctx, cancel := h.backendContext(c)
	defer cancel()

	equipos, err := h.Backend.ListEquipos(ctx)
	if err != nil {
		return backendError(c, err)
	}
	return respond(c, http.StatusOK, "Equipos con estado", pkg.WithTeamStatus(equipos))
}

// GetAvailableSuperForms devuelve los super forms que todavía se pueden
// convertir en orden de trabajo
func (h *Handler) GetAvailableSuperForms(c *fiber.Ctx) error {
	ctx, cancel := h.backendContext(c)
	defer cancel()

	forms, err := h.Backend.ListSuperForms(ctx)
	if err != nil {
		return backendError(c, err)
	}
	return respond(c, http.StatusOK, "Super forms disponibles", pkg.AvailableSuperForms(forms))
}
