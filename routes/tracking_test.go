package routes

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flota-municipal-api/models"
)

func TestPositions(t *testing.T) {
	env := newTestEnv(t, nil)
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	env.handler.Tracker.Store.Set(models.Posicion{VehiculoID: "7", Lat: -33.45, Lng: -70.66, Fuente: models.FuenteSocket, RecibidoEn: now})
	env.handler.Tracker.Store.Set(models.Posicion{VehiculoID: "3", Lat: -33.40, Lng: -70.60, Fuente: models.FuenteSimulador, RecibidoEn: now})

	res, body := env.do(t, http.MethodGet, "/api/tracking/posiciones", env.operador, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, dataList(t, body), 2)

	res, body = env.do(t, http.MethodGet, "/api/tracking/posiciones/7", env.operador, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, models.FuenteSocket, data["fuente"])
	assert.Equal(t, -33.45, data["lat"])

	res, body = env.do(t, http.MethodGet, "/api/tracking/posiciones/99", env.operador, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, true, body["error"])
}

func TestTrackingStatus(t *testing.T) {
	env := newTestEnv(t, nil)

	res, body := env.do(t, http.MethodGet, "/api/tracking/estado", env.operador, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "deshabilitado", data["socket"])
	assert.Empty(t, data["fuentes"])
	assert.EqualValues(t, 0, data["posiciones"])

	res, body = env.do(t, http.MethodGet, "/api/tracking/equipos", env.operador, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	data = body["data"].(map[string]any)
	assert.Empty(t, data["equipos"])
	assert.Nil(t, data["actualizadoEn"])
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	p := models.Posicion{VehiculoID: "7", Lat: 1.5, Lng: -2, Fuente: models.FuentePolling, RecibidoEn: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, writeEvent(&buf, EventoPosicion, p))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("event: posicion\ndata: {")))
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("}\n\n")))
	assert.Contains(t, out, `"vehiculoId":"7"`)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n\n")))
}

type sseEvent struct {
	name string
	data string
}

// readEvent lee el siguiente evento SSE, ignorando comentarios de keepalive.
func readEvent(r *bufio.Reader) (sseEvent, error) {
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return ev, err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev, nil
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func listen(t *testing.T, env *testEnv) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go env.app.Listener(ln)
	t.Cleanup(func() { _ = env.app.ShutdownWithTimeout(2 * time.Second) })
	return "http://" + ln.Addr().String()
}

func openStream(t *testing.T, client *http.Client, base, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, base+"/api/tracking/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))
	return res
}

func TestStreamPositions(t *testing.T) {
	env := newTestEnv(t, nil)
	store := env.handler.Tracker.Store
	base := listen(t, env)
	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	client := &http.Client{Transport: transport}

	store.Set(models.Posicion{VehiculoID: "7", Lat: -33.45, Lng: -70.66, Fuente: models.FuenteSocket})

	res := openStream(t, client, base, env.operador)
	r := bufio.NewReader(res.Body)

	ev, err := readEvent(r)
	require.NoError(t, err)
	assert.Equal(t, EventoPosicion, ev.name)
	assert.Contains(t, ev.data, `"vehiculoId":"7"`)
	assert.Equal(t, 1, store.Hub().Subscribers())

	store.Set(models.Posicion{VehiculoID: "3", Lat: -33.40, Lng: -70.60, Fuente: models.FuenteSimulador})
	ev, err = readEvent(r)
	require.NoError(t, err)
	assert.Equal(t, EventoPosicion, ev.name)
	assert.Contains(t, ev.data, `"vehiculoId":"3"`)
	assert.Contains(t, ev.data, `"fuente":"`+models.FuenteSimulador+`"`)

	// al desconectarse el cliente, la siguiente escritura falla y se libera la suscripción
	require.NoError(t, res.Body.Close())
	require.Eventually(t, func() bool {
		store.Set(models.Posicion{VehiculoID: "3", Lat: -33.41, Lng: -70.61})
		return store.Hub().Subscribers() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStreamPositionsEndsOnShutdown(t *testing.T) {
	env := newTestEnv(t, nil)
	store := env.handler.Tracker.Store
	base := listen(t, env)
	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	client := &http.Client{Transport: transport}

	store.Set(models.Posicion{VehiculoID: "7", Lat: -33.45, Lng: -70.66})
	res := openStream(t, client, base, env.operador)
	defer res.Body.Close()
	r := bufio.NewReader(res.Body)
	_, err := readEvent(r)
	require.NoError(t, err)

	store.Hub().Close()
	_, err = readEvent(r)
	assert.ErrorIs(t, err, io.EOF)

	start := time.Now()
	require.NoError(t, env.app.ShutdownWithTimeout(2*time.Second))
	assert.Less(t, time.Since(start), time.Second)
}
