package routes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"flota-municipal-api/models"
	"flota-municipal-api/pkg"
	"flota-municipal-api/tracking"
)

const (
	EventoPosicion = "posicion"

	// Posiciones que puede acumular un stream antes de empezar a descartar
	StreamBuffer    = 64
	StreamKeepAlive = 15 * time.Second
)

func (h *Handler) GetPositions(c *fiber.Ctx) error {
	return respond(c, http.StatusOK, "Posiciones", h.Tracker.Store.All())
}

func (h *Handler) GetPosition(c *fiber.Ctx) error {
	p, err := h.Tracker.Store.Get(c.Params("vehiculoId"))
	if errors.Is(err, tracking.ErrSinPosicion) {
		return c.Status(http.StatusNotFound).JSON(apiResponse{
			Message: "Vehículo sin posición conocida",
			Data:    nil,
			Error:   true,
		})
	}
	return respond(c, http.StatusOK, "Posición", p)
}

// GetTrackedTeams devuelve la última foto de equipos del seguimiento. No
// consulta al backend: la foto la refresca el poller de equipos.
func (h *Handler) GetTrackedTeams(c *fiber.Ctx) error {
	equipos := []models.Equipo{}
	var updatedAt *time.Time
	if h.Tracker.Teams != nil {
		snapshot, at := h.Tracker.Teams.Snapshot()
		equipos = snapshot
		if !at.IsZero() {
			updatedAt = &at
		}
	}
	return respond(c, http.StatusOK, "Seguimiento de equipos", fiber.Map{
		"equipos":       pkg.WithTeamStatus(equipos),
		"actualizadoEn": updatedAt,
	})
}

// GetTrackingStatus resume el estado de las fuentes de posiciones
func (h *Handler) GetTrackingStatus(c *fiber.Ctx) error {
	fuentes := []string{}
	for _, s := range h.Tracker.Sources() {
		fuentes = append(fuentes, s.Name())
	}
	socket := "deshabilitado"
	if h.Tracker.Socket != nil {
		socket = h.Tracker.Socket.State()
	}
	hub := h.Tracker.Store.Hub()
	return respond(c, http.StatusOK, "Estado del seguimiento", fiber.Map{
		"fuentes":      fuentes,
		"socket":       socket,
		"posiciones":   h.Tracker.Store.Len(),
		"suscriptores": hub.Subscribers(),
		"descartadas":  hub.Dropped(),
	})
}

func writeEvent(w io.Writer, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}

// StreamPositions abre un stream SSE: primero la foto actual y luego un
// evento por cada posición nueva. El stream termina cuando falla una escritura
// o cuando el tracker se detiene y cierra el hub.
func (h *Handler) StreamPositions(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	hub := h.Tracker.Store.Hub()
	id, updates := hub.Subscribe(StreamBuffer)
	snapshot := h.Tracker.Store.All()
	requestID := c.Locals("request_id")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer hub.Unsubscribe(id)
		log.WithField("request_id", requestID).Debug("stream de posiciones abierto")

		for _, p := range snapshot {
			if err := writeEvent(w, EventoPosicion, p); err != nil {
				return
			}
		}
		if err := w.Flush(); err != nil {
			return
		}

		keepAlive := time.NewTicker(StreamKeepAlive)
		defer keepAlive.Stop()
		for {
			select {
			case p, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, EventoPosicion, p); err != nil {
					return
				}
			case <-keepAlive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				log.WithField("request_id", requestID).Debug("stream de posiciones cerrado")
				return
			}
		}
	}))
	return nil
}
