package routes

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flota-municipal-api/config"
	"flota-municipal-api/db"
	"flota-municipal-api/models"
	"flota-municipal-api/pkg"
	"flota-municipal-api/pkg/backend"
	"flota-municipal-api/pkg/geocode"
	"flota-municipal-api/tracking"
)

const testSecret = "secreto-de-prueba"

type testEnv struct {
	app      *fiber.App
	handler  *Handler
	admin    string
	operador string
}

// newTestEnv arma la app completa sobre una base temporal. upstream hace de
// backend externo; puede ser nil.
func newTestEnv(t *testing.T, upstream http.HandlerFunc) *testEnv {
	t.Helper()

	cfg := config.Config{
		JwtSecret:            testSecret,
		DefaultAdminUsername: "admin",
		DefaultAdminPassword: "admin123",
		GoogleMapsApiKey:     "maps-key",
		DBPath:               filepath.Join(t.TempDir(), "test.db"),
		Production:           true,
	}

	conn, err := db.InitDB(config.Config{
		DBPath:               cfg.DBPath,
		DefaultAdminUsername: cfg.DefaultAdminUsername,
		DefaultAdminPassword: cfg.DefaultAdminPassword,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateUser(conn, "operador", "op123", models.RoleOperador))

	endpoint := ""
	var httpClient *http.Client
	if upstream != nil {
		srv := httptest.NewServer(upstream)
		t.Cleanup(srv.Close)
		endpoint, httpClient = srv.URL, srv.Client()
	}
	cfg.BackendEndpoint = endpoint

	h := &Handler{
		Config:   cfg,
		DB:       conn,
		Backend:  backend.New(endpoint, httpClient),
		Geocoder: geocode.New("http://127.0.0.1:0", "", nil),
		Tracker:  tracking.New(config.TrackingConfig{PositionTTL: time.Minute}, "", nil, nil),
	}

	admin, err := pkg.GenerateToken(testSecret, "1", models.RoleAdmin)
	require.NoError(t, err)
	operador, err := pkg.GenerateToken(testSecret, "2", models.RoleOperador)
	require.NoError(t, err)

	return &testEnv{app: NewApp(h), handler: h, admin: admin, operador: operador}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res, out
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	res, body := env.do(t, http.MethodGet, "/api/status", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["active"])
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestMapConfigRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	res, body := env.do(t, http.MethodGet, "/api/get-map-key", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "maps-key", body["apiKey"])

	res, body = env.do(t, http.MethodGet, "/api/get-backend-endpoint", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "", body["endpoint"])

	env.handler.Config.GoogleMapsApiKey = ""
	res, body = env.do(t, http.MethodGet, "/api/get-map-key", "", nil)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestGeocode(t *testing.T) {
	var gotQuery string
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.URL.Query().Get("latlng") == "0,0" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"formatted_address":"Av. Libertador 1"}],"status":"OK"}`)
	}))
	defer google.Close()

	env := newTestEnv(t, nil)
	env.handler.Geocoder = geocode.New(google.URL, "server-key", google.Client())

	t.Run("passes the upstream body through", func(t *testing.T) {
		res, body := env.do(t, http.MethodGet, "/api/geocode?lat=-33.45&lng=-70.66", "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "OK", body["status"])
		assert.Contains(t, gotQuery, "language=es")
		assert.Contains(t, gotQuery, "key=server-key")
	})

	t.Run("missing or invalid coordinates", func(t *testing.T) {
		res, _ := env.do(t, http.MethodGet, "/api/geocode?lat=-33.45", "", nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		res, _ = env.do(t, http.MethodGet, "/api/geocode?lat=abc&lng=1", "", nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("upstream failure", func(t *testing.T) {
		res, _ := env.do(t, http.MethodGet, "/api/geocode?lat=0&lng=0", "", nil)
		assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	})

	t.Run("missing server key", func(t *testing.T) {
		env.handler.Geocoder = geocode.New(google.URL, "", google.Client())
		res, _ := env.do(t, http.MethodGet, "/api/geocode?lat=1&lng=1", "", nil)
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	res, body := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "admin", Password: "admin123"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	token, _ := body["token"].(string)
	id, role, err := pkg.GetUserFromToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "1", id)
	assert.Equal(t, models.RoleAdmin, role)

	var lastLogin *string
	require.NoError(t, env.handler.DB.QueryRow("SELECT last_login_at FROM users WHERE id = 1").Scan(&lastLogin))
	assert.NotNil(t, lastLogin)

	res, _ = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "admin", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	_, err = env.handler.DB.Exec("UPDATE users SET active = false WHERE username = 'operador'")
	require.NoError(t, err)
	res, _ = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "operador", Password: "op123"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)

	res, _ := env.do(t, http.MethodGet, "/api/tracking/posiciones", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	other, err := pkg.GenerateToken("otro-secreto", "1", models.RoleAdmin)
	require.NoError(t, err)
	res, _ = env.do(t, http.MethodGet, "/api/tracking/posiciones", other, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	ghost, err := pkg.GenerateToken(testSecret, "99", models.RoleAdmin)
	require.NoError(t, err)
	res, _ = env.do(t, http.MethodGet, "/api/tracking/posiciones", ghost, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = env.do(t, http.MethodGet, "/api/tracking/posiciones", env.operador, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("operators cannot manage users", func(t *testing.T) {
		res, _ := env.do(t, http.MethodGet, "/api/usuarios", env.operador, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	})

	t.Run("current user", func(t *testing.T) {
		res, body := env.do(t, http.MethodGet, "/api/usuarios/me", env.operador, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "operador", body["username"])
		assert.NotContains(t, body, "password")
	})

	t.Run("create, update and delete", func(t *testing.T) {
		res, body := env.do(t, http.MethodPost, "/api/usuarios", env.admin, CreateUserRequest{Username: "carla", Password: "c123"})
		require.Equal(t, http.StatusCreated, res.StatusCode)
		id := toID(body["id"])

		res, _ = env.do(t, http.MethodPost, "/api/usuarios", env.admin, CreateUserRequest{Username: "carla", Password: "otra"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		res, _ = env.do(t, http.MethodPost, "/api/usuarios", env.admin, CreateUserRequest{Username: "pedro", Password: "p", Role: "root"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		res, body = env.do(t, http.MethodGet, "/api/usuarios/"+id, env.admin, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, models.RoleOperador, body["role"])
		assert.Equal(t, true, body["active"])

		res, _ = env.do(t, http.MethodPut, "/api/usuarios/"+id, env.admin, UpdateUserRequest{Role: models.RoleAdmin, Active: true})
		require.Equal(t, http.StatusOK, res.StatusCode)
		_, body = env.do(t, http.MethodGet, "/api/usuarios/"+id, env.admin, nil)
		assert.Equal(t, models.RoleAdmin, body["role"])

		res, body = env.do(t, http.MethodDelete, "/api/usuarios/"+id, env.admin, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, false, body["forceDelete"])
		_, body = env.do(t, http.MethodGet, "/api/usuarios/"+id, env.admin, nil)
		assert.Equal(t, false, body["active"])

		res, _ = env.do(t, http.MethodDelete, "/api/usuarios/"+id+"?forceDelete=true", env.admin, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
		res, _ = env.do(t, http.MethodGet, "/api/usuarios/"+id, env.admin, nil)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("default admin is protected", func(t *testing.T) {
		res, _ := env.do(t, http.MethodDelete, "/api/usuarios/1", env.admin, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		res, _ = env.do(t, http.MethodPut, "/api/usuarios/1", env.admin, UpdateUserRequest{Username: "otro", Role: models.RoleOperador})
		require.Equal(t, http.StatusOK, res.StatusCode)
		_, body := env.do(t, http.MethodGet, "/api/usuarios/1", env.admin, nil)
		assert.Equal(t, "admin", body["username"])
		assert.Equal(t, models.RoleAdmin, body["role"])
		assert.Equal(t, true, body["active"])
	})

	t.Run("demoted admin loses admin routes with the same token", func(t *testing.T) {
		res, body := env.do(t, http.MethodPost, "/api/usuarios", env.admin, CreateUserRequest{Username: "jefe", Password: "j123", Role: models.RoleAdmin})
		require.Equal(t, http.StatusCreated, res.StatusCode)
		id := toID(body["id"])

		res, body = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Username: "jefe", Password: "j123"})
		require.Equal(t, http.StatusOK, res.StatusCode)
		token, _ := body["token"].(string)

		res, _ = env.do(t, http.MethodGet, "/api/usuarios", token, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)

		res, _ = env.do(t, http.MethodPut, "/api/usuarios/"+id, env.admin, UpdateUserRequest{Role: models.RoleOperador, Active: true})
		require.Equal(t, http.StatusOK, res.StatusCode)

		res, _ = env.do(t, http.MethodGet, "/api/usuarios", token, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
		res, _ = env.do(t, http.MethodGet, "/api/usuarios/me", token, nil)
		assert.Equal(t, http.StatusOK, res.StatusCode)

		res, _ = env.do(t, http.MethodDelete, "/api/usuarios/"+id+"?forceDelete=true", env.admin, nil)
		require.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/usuarios", nil)
		req.Header.Set("Authorization", "Bearer "+env.admin)
		res, err := env.app.Test(req, -1)
		require.NoError(t, err)
		defer res.Body.Close()

		var users []models.User
		require.NoError(t, json.NewDecoder(res.Body).Decode(&users))
		require.Len(t, users, 2)
		assert.Equal(t, "admin", users[0].Username)
	})
}

func toID(v any) string {
	s, _ := json.MarshalToString(v)
	return s
}
