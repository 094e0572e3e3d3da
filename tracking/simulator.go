package tracking

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"flota-municipal-api/config"
	"flota-municipal-api/models"
)

// Paso máximo del paseo aleatorio, en grados (~55 m)
const DefaultSimulatorStep = 0.0005

// Simulator mueve vehículos de demostración con un paseo aleatorio.
type Simulator struct {
	store    *Store
	interval time.Duration
	step     float64

	mu        sync.Mutex
	rnd       *rand.Rand
	vehicles  []string
	positions map[string]models.LatLng
}

func NewSimulator(store *Store, vehicles []config.DemoVehicle, interval time.Duration, seed uint64) *Simulator {
	s := &Simulator{
		store:     store,
		interval:  interval,
		step:      DefaultSimulatorStep,
		rnd:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		positions: make(map[string]models.LatLng, len(vehicles)),
	}
	for _, v := range vehicles {
		s.vehicles = append(s.vehicles, v.ID)
		s.positions[v.ID] = models.LatLng{Lat: v.Lat, Lng: v.Lng}
	}
	return s
}

func (s *Simulator) Name() string { return models.FuenteSimulador }

// Step avanza un paso a cada vehículo y lo publica en el store.
func (s *Simulator) Step(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.vehicles {
		p := s.positions[id]
		p.Lat += (s.rnd.Float64()*2 - 1) * s.step
		p.Lng += (s.rnd.Float64()*2 - 1) * s.step
		s.positions[id] = p

		s.store.Set(models.Posicion{
			VehiculoID: id,
			Lat:        p.Lat,
			Lng:        p.Lng,
			Fuente:     models.FuenteSimulador,
			RecibidoEn: now,
		})
	}
}

func (s *Simulator) Run(ctx context.Context) error {
	log.Info("Simulador de vehículos iniciado con ", len(s.vehicles), " vehículos")
	return every(ctx, s.interval, func(context.Context) {
		s.Step(time.Now())
	})
}
