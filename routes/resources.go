package routes

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	"flota-municipal-api/models"
	"flota-municipal-api/pkg"
	"flota-municipal-api/pkg/backend"
)

// Resources son los recursos del backend con CRUD completo desde el panel
var Resources = []string{
	backend.Trabajadores,
	backend.Supervisores,
	backend.Vehiculos,
	backend.Equipos,
	backend.Beacons,
	backend.Gateways,
	backend.Zonas,
	backend.Formularios,
	backend.Ordenes,
	backend.SuperForm,
}

var errInvalidBody = errors.New("el cuerpo no es JSON válido")

// searchableFields junta los textos y números de un registro, hasta dos
// niveles de profundidad, para el filtro ?q=
func searchableFields(item map[string]any) []string {
	var out []string
	var walk func(v any, depth int)
	walk = func(v any, depth int) {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		case map[string]any:
			if depth >= 2 {
				return
			}
			for _, inner := range x {
				walk(inner, depth+1)
			}
		case []any:
			if depth >= 2 {
				return
			}
			for _, inner := range x {
				walk(inner, depth+1)
			}
		}
	}
	walk(item, 0)
	return out
}

// rawData evita serializar un data ausente como JSON vacío
func rawData(raw jsoniter.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// ListResource lista un recurso del backend, filtrado por ?q= si viene.
func (h *Handler) ListResource(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := h.backendContext(c)
		defer cancel()

		env, err := h.Backend.Do(ctx, http.MethodGet, resource, nil)
		if err != nil {
			return backendError(c, err)
		}
		data, err := backend.NormalizeList(env.Data, resource)
		if err != nil {
			return backendError(c, err)
		}

		q := c.Query("q")
		if q == "" {
			return respond(c, http.StatusOK, env.Message, data)
		}

		var items []map[string]any
		if err := json.Unmarshal(data, &items); err != nil {
			return backendError(c, err)
		}
		return respond(c, http.StatusOK, env.Message, pkg.FilterBySearch(items, q, searchableFields))
	}
}

func (h *Handler) GetResource(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := h.backendContext(c)
		defer cancel()

		env, err := h.Backend.Do(ctx, http.MethodGet, resource+"/"+url.PathEscape(c.Params("id")), nil)
		if err != nil {
			return backendError(c, err)
		}
		data, err := backend.NormalizeObject(env.Data)
		if err != nil {
			return backendError(c, err)
		}
		return respond(c, http.StatusOK, env.Message, data)
	}
}

// validateBody revisa rut, teléfono y email de trabajadores y supervisores.
// En un alta el nombre también es obligatorio.
func validateBody(resource string, body []byte, create bool) (map[string]string, error) {
	switch resource {
	case backend.Trabajadores:
		var t models.Trabajador
		if err := json.Unmarshal(body, &t); err != nil {
			return nil, err
		}
		if create {
			return pkg.ValidarTrabajador(t), nil
		}
		return pkg.ValidarContacto(t.Rut, t.Telefono, t.Email), nil
	case backend.Supervisores:
		var s models.Supervisor
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, err
		}
		if create {
			return pkg.ValidarSupervisor(s), nil
		}
		return pkg.ValidarContacto(s.Rut, s.Telefono, s.Email), nil
	}
	if !json.Valid(body) {
		return nil, errInvalidBody
	}
	return nil, nil
}

func (h *Handler) checkBody(c *fiber.Ctx, resource string, create bool) bool {
	errs, err := validateBody(resource, c.Body(), create)
	if err != nil {
		_ = c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Error al analizar el cuerpo de la solicitud",
		})
		return false
	}
	if len(errs) > 0 {
		_ = c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":  "Datos inválidos",
			"errors": errs,
		})
		return false
	}
	return true
}

func (h *Handler) CreateResource(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !h.checkBody(c, resource, true) {
			return nil
		}

		ctx, cancel := h.backendContext(c)
		defer cancel()

		env, err := h.Backend.Create(ctx, resource, c.Body())
		if err != nil {
			return backendError(c, err)
		}
		return respond(c, http.StatusCreated, env.Message, rawData(env.Data))
	}
}

func (h *Handler) UpdateResource(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !h.checkBody(c, resource, false) {
			return nil
		}

		ctx, cancel := h.backendContext(c)
		defer cancel()

		env, err := h.Backend.Update(ctx, resource, c.Params("id"), c.Body())
		if err != nil {
			return backendError(c, err)
		}
		return respond(c, http.StatusOK, env.Message, rawData(env.Data))
	}
}

func (h *Handler) DeleteResource(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := h.backendContext(c)
		defer cancel()

		env, err := h.Backend.Delete(ctx, resource, c.Params("id"))
		if err != nil {
			return backendError(c, err)
		}
		return respond(c, http.StatusOK, env.Message, rawData(env.Data))
	}
}
