package tracking

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"flota-municipal-api/models"
)

var ErrSinPosicion = errors.New("vehículo sin posición conocida")

// Store guarda la última posición conocida de cada vehículo. Gana la última
// escritura, venga de la fuente que venga. Las posiciones vencen tras ttl.
// Set guarda y publica bajo el mismo lock, así los streams ven las
// escrituras en el mismo orden que el mapa.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
	ttl   time.Duration
	hub   *Hub
}

// NewStore crea el mapa de posiciones. Sin janitor propio: las entradas
// vencidas se ignoran al leer y Prune las elimina.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Store{
		cache: cache.New(ttl, 0),
		ttl:   ttl,
		hub:   NewHub(),
	}
}

func (s *Store) Hub() *Hub { return s.hub }

func (s *Store) Set(p models.Posicion) {
	if p.RecibidoEn.IsZero() {
		p.RecibidoEn = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(p.VehiculoID, p, cache.DefaultExpiration)
	s.hub.Publish(p)
}

func (s *Store) Get(vehiculoID string) (models.Posicion, error) {
	v, ok := s.cache.Get(vehiculoID)
	if !ok {
		return models.Posicion{}, ErrSinPosicion
	}
	return v.(models.Posicion), nil
}

// All devuelve las posiciones vigentes ordenadas por vehículo.
func (s *Store) All() []models.Posicion {
	items := s.cache.Items()
	out := make([]models.Posicion, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(models.Posicion))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehiculoID < out[j].VehiculoID })
	return out
}

func (s *Store) Len() int { return len(s.cache.Items()) }

// Load precarga posiciones guardadas sin notificar a los suscriptores. Las
// que ya vencieron se descartan.
func (s *Store) Load(positions []models.Posicion, now time.Time) int {
	loaded := 0
	for _, p := range positions {
		d := cache.NoExpiration
		if s.ttl != cache.NoExpiration {
			d = s.ttl - now.Sub(p.RecibidoEn)
			if d <= 0 {
				continue
			}
		}
		if _, ok := s.cache.Get(p.VehiculoID); ok {
			continue
		}
		s.cache.Set(p.VehiculoID, p, d)
		loaded++
	}
	return loaded
}

func (s *Store) Prune() { s.cache.DeleteExpired() }
