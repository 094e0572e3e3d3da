package tracking

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"flota-municipal-api/models"
)

// Hub reparte cada actualización a los suscriptores (los streams SSE del
// mapa). Un suscriptor lento pierde actualizaciones en vez de frenar al resto.
// Close cierra todos los canales para que los streams terminen al apagar.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]chan models.Posicion
	closed  bool
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan models.Posicion)}
}

func (h *Hub) Subscribe(buffer int) (string, <-chan models.Posicion) {
	if buffer <= 0 {
		buffer = 1
	}
	id := uuid.NewString()
	ch := make(chan models.Posicion, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return id, ch
	}
	h.subs[id] = ch
	h.mu.Unlock()

	log.Debug("suscriptor de posiciones agregado: ", id)
	return id, ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Close termina todas las suscripciones. Las siguientes nacen cerradas.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) Publish(p models.Posicion) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- p:
		default:
			h.dropped.Add(1)
			log.Debug("suscriptor lento, se descarta posición: ", id)
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped cuenta las actualizaciones descartadas por suscriptores llenos.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }
