package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"flota-municipal-api/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrNotFound    = errors.New("recurso no encontrado en el backend")
	ErrSinEndpoint = errors.New("endpoint del backend no configurado")
)

// Recursos del backend que el panel administra
const (
	Trabajadores = "trabajadores"
	Supervisores = "supervisores"
	Vehiculos    = "vehiculos"
	Equipos      = "equipos"
	Beacons      = "beacons"
	Gateways     = "gateways"
	Zonas        = "zonas"
	Formularios  = "formularios"
	Ordenes      = "ordenes"
	SuperForm    = "super-form"
	Registros    = "registros"
	Plazas       = "plazas"
)

var HttpClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxConnsPerHost:     10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     60 * time.Second,
	},
	Timeout: 10 * time.Second,
}

// Envelope es la respuesta estándar del backend: {message, data, error}
type Envelope struct {
	Message string              `json:"message"`
	Data    jsoniter.RawMessage `json:"data"`
	Error   jsoniter.RawMessage `json:"error"`
}

// Failed indica si el campo error viene con un valor verdadero. El backend
// lo manda como booleano, pero a veces llega un texto o un objeto.
func (e *Envelope) Failed() bool {
	raw := bytes.TrimSpace(e.Error)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")), bytes.Equal(raw, []byte("false")), bytes.Equal(raw, []byte(`""`)):
		return false
	}
	return true
}

// Error es una respuesta fallida del backend
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend respondió %d: %s", e.Status, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = HttpClient
	}
	return &Client{endpoint: strings.TrimRight(endpoint, "/"), http: httpClient}
}

// Do hace la petición y devuelve el sobre ya validado. body puede ser nil,
// []byte (se envía tal cual) o cualquier valor serializable.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Envelope, error) {
	if c.endpoint == "" {
		return nil, ErrSinEndpoint
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("error serializando el cuerpo: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	fullURL := c.endpoint + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("backend-request: ", method, " ", fullURL)
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error llamando al backend: %w", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error leyendo la respuesta del backend: %w", err)
	}

	env := &Envelope{}
	decodeErr := json.Unmarshal(resBytes, env)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := strings.TrimSpace(string(resBytes))
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return nil, &Error{Status: res.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("respuesta del backend no es JSON: %w", decodeErr)
	}
	if env.Failed() {
		return nil, &Error{Status: res.StatusCode, Message: env.Message}
	}
	return env, nil
}

// List trae un listado y lo decodifica en out (puntero a slice).
func (c *Client) List(ctx context.Context, resource string, out any) error {
	env, err := c.Do(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return err
	}
	data, err := NormalizeList(env.Data, resource)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Get trae un recurso individual.
func (c *Client) Get(ctx context.Context, resource, id string, out any) error {
	env, err := c.Do(ctx, http.MethodGet, resource+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	data, err := NormalizeObject(env.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Client) Create(ctx context.Context, resource string, body any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPost, resource, body)
}

func (c *Client) Update(ctx context.Context, resource, id string, body any) (*Envelope, error) {
	return c.Do(ctx, http.MethodPut, resource+"/"+url.PathEscape(id), body)
}

func (c *Client) Delete(ctx context.Context, resource, id string) (*Envelope, error) {
	return c.Do(ctx, http.MethodDelete, resource+"/"+url.PathEscape(id), nil)
}

func (c *Client) ListVehiculos(ctx context.Context) ([]models.Vehiculo, error) {
	var out []models.Vehiculo
	err := c.List(ctx, Vehiculos, &out)
	return out, err
}

func (c *Client) ListEquipos(ctx context.Context) ([]models.Equipo, error) {
	var out []models.Equipo
	err := c.List(ctx, Equipos, &out)
	return out, err
}

func (c *Client) ListZonas(ctx context.Context) ([]models.Zona, error) {
	var out []models.Zona
	err := c.List(ctx, Zonas, &out)
	return out, err
}

func (c *Client) ListBeacons(ctx context.Context) ([]models.Beacon, error) {
	var out []models.Beacon
	err := c.List(ctx, Beacons, &out)
	return out, err
}

func (c *Client) ListSuperForms(ctx context.Context) ([]models.SuperForm, error) {
	var out []models.SuperForm
	err := c.List(ctx, SuperForm, &out)
	return out, err
}
