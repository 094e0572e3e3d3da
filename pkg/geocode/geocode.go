package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrSinApiKey = errors.New("API key de Google Maps no configurada")
	ErrUpstream  = errors.New("respuesta inválida de la API de geocodificación")
)

const DefaultLanguage = "es"

// Client consulta la API de geocodificación inversa de Google
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: httpClient}
}

// Reverse devuelve la respuesta de Google sin modificar.
func (c *Client) Reverse(ctx context.Context, lat, lng float64, language string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrSinApiKey
	}
	if language == "" {
		language = DefaultLanguage
	}

	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("language", language)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: código de estado %d", ErrUpstream, resp.StatusCode)
	}
	if !jsoniter.Valid(body) {
		return nil, fmt.Errorf("%w: la respuesta no es JSON", ErrUpstream)
	}
	return body, nil
}
