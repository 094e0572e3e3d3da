package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"flota-municipal-api/logger"
	"flota-municipal-api/middleware"
	"flota-municipal-api/pkg/backend"
)

// NewApp crea la aplicación con CORS, logging y todas las rutas
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "flota-municipal-api",
		DisableStartupMessage: h.Config.Production,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin,Content-Type,Accept,Content-Length,Accept-Language,Accept-Encoding,Connection,Access-Control-Allow-Origin,Authorization,X-Request-ID",
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
	}))
	app.Use(logger.Middleware())

	Setup(app, h)
	return app
}

func Setup(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	// Status
	api.Get("/status", h.GetStatus)

	protected := func(prefix string) fiber.Router {
		return api.Group(prefix, middleware.JWTProtected(h.Config.JwtSecret), middleware.ValidUserAndActive(h.DB, h.Config.JwtSecret))
	}

	/* -----------------------------------------------------------------
	|                                                                   |
	|                             MAPAS                                 |
	|                                                                   |
	------------------------------------------------------------------- */
	api.Get("/geocode", h.Geocode)                         // Geocodificación inversa con la API key del servidor
	api.Get("/get-map-key", h.GetMapKey)                   // API key de Google Maps para el navegador
	api.Get("/get-backend-endpoint", h.GetBackendEndpoint) // Endpoint del backend configurado

	/* -----------------------------------------------------------------
	|                                                                   |
	|                             AUTH                                  |
	|                                                                   |
	------------------------------------------------------------------- */
	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Get("/logout", h.Logout)

	/* -----------------------------------------------------------------
	|                                                                   |
	|                             USUARIOS                              |
	|                                                                   |
	------------------------------------------------------------------- */
	users := protected("/usuarios")

	// Usuarios
	users.Get("/me", h.GetCurrentUser) // Obtiene el usuario autenticado
	// ADMIN
	users.Get("/", middleware.IsAdmin, h.GetUsers)              // Obtiene todos los usuarios
	users.Post("/", middleware.IsAdmin, h.CreateUser)           // Crea un usuario
	users.Get("/:user_id", middleware.IsAdmin, h.GetUser)       // Obtiene un usuario
	users.Put("/:user_id", middleware.IsAdmin, h.UpdateUser)    // Actualiza un usuario
	users.Delete("/:user_id", middleware.IsAdmin, h.DeleteUser) // Desactiva o elimina un usuario

	/* -----------------------------------------------------------------
	|                                                                   |
	|                             SEGUIMIENTO                           |
	|                                                                   |
	------------------------------------------------------------------- */
	seguimiento := protected("/tracking")
	seguimiento.Get("/posiciones", h.GetPositions)            // Foto de las últimas posiciones
	seguimiento.Get("/posiciones/:vehiculoId", h.GetPosition) // Última posición de un vehículo
	seguimiento.Get("/equipos", h.GetTrackedTeams)            // Última foto de equipos
	seguimiento.Get("/estado", h.GetTrackingStatus)           // Estado de las fuentes
	seguimiento.Get("/stream", h.StreamPositions)             // Posiciones en vivo (SSE)

	/* -----------------------------------------------------------------
	|                                                                   |
	|                             BACKEND                               |
	|                                                                   |
	------------------------------------------------------------------- */
	groups := make(map[string]fiber.Router, len(Resources))
	for _, resource := range Resources {
		groups[resource] = protected("/" + resource)
	}

	// Vistas derivadas, antes de /:id
	groups[backend.Zonas].Get("/estadisticas", h.GetAreaStatistics)
	groups[backend.Beacons].Get("/asignaciones", h.GetBeaconAssignments)
	groups[backend.Equipos].Get("/estado", h.GetTeamStatus)
	groups[backend.Ordenes].Get("/super-forms-disponibles", h.GetAvailableSuperForms)

	for _, resource := range Resources {
		g := groups[resource]
		g.Get("/", h.ListResource(resource))
		g.Get("/:id", h.GetResource(resource))
		g.Post("/", h.CreateResource(resource))
		g.Put("/:id", h.UpdateResource(resource))
		g.Delete("/:id", h.DeleteResource(resource))
	}

	// Solo lectura
	protected("/"+backend.Registros).Get("/:id", h.GetResource(backend.Registros))
	protected("/"+backend.Plazas).Get("/:id", h.GetResource(backend.Plazas))
}
