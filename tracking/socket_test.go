package tracking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flota-municipal-api/models"
)

// positionServer imita el namespace /position del backend.
func positionServer(t *testing.T, requests chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/socket.io/", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("EIO"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		send := func(s string) { _ = conn.WriteMessage(websocket.TextMessage, []byte(s)) }
		send(`0{"sid":"abc","upgrades":[],"pingInterval":25000,"pingTimeout":20000}`)

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			select {
			case requests <- string(msg):
			default:
			}

			switch {
			case string(msg) == "40/position,":
				send(`40/position,{"sid":"s1"}`)
				send("2")
			case strings.HasPrefix(string(msg), `42/position,["obtener posicion"`):
				send(`42/position,["otro-evento",{"lat":0,"lng":0}]`)
				send(`42/position,["posicion-actualizada",{"data":{"latitud":"-33.45","longitud":-70.66}}]`)
			}
		}
	}))
}

func TestSocketFeed(t *testing.T) {
	requests := make(chan string, 64)
	srv := positionServer(t, requests)
	defer srv.Close()

	store := NewStore(time.Minute)
	feed := NewSocketFeed(srv.URL, "veh-7", 20*time.Millisecond, 50*time.Millisecond, store)
	assert.Equal(t, EstadoDesconectado, feed.State())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := store.Get("veh-7")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	p, err := store.Get("veh-7")
	require.NoError(t, err)
	assert.Equal(t, -33.45, p.Lat)
	assert.Equal(t, -70.66, p.Lng)
	assert.Equal(t, models.FuenteSocket, p.Fuente)
	assert.Equal(t, EstadoConectado, feed.State())

	seen := map[string]bool{}
	require.Eventually(t, func() bool {
		for len(requests) > 0 {
			seen[<-requests] = true
		}
		return seen["40/position,"] && seen["3"] && seen[`42/position,["obtener posicion","veh-7"]`]
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("el feed no se detuvo")
	}
	assert.Equal(t, EstadoDesconectado, feed.State())
}

func TestSocketFeedRetriesUntilCancelled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	feed := NewSocketFeed(url, "veh-7", time.Second, 10*time.Millisecond, NewStore(0))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, feed.Run(ctx))
	assert.Equal(t, EstadoDesconectado, feed.State())
}
