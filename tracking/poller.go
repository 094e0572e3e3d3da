package tracking

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"flota-municipal-api/models"
)

type VehiculoLister interface {
	ListVehiculos(ctx context.Context) ([]models.Vehiculo, error)
}

type EquipoLister interface {
	ListEquipos(ctx context.Context) ([]models.Equipo, error)
}

// VehiclePoller consulta periódicamente el listado de vehículos y guarda la
// posición de los que traen coordenadas.
type VehiclePoller struct {
	lister   VehiculoLister
	store    *Store
	interval time.Duration
}

func NewVehiclePoller(lister VehiculoLister, store *Store, interval time.Duration) *VehiclePoller {
	return &VehiclePoller{lister: lister, store: store, interval: interval}
}

func (p *VehiclePoller) Name() string { return models.FuentePolling }

// Poll hace una consulta y devuelve cuántas posiciones se actualizaron.
func (p *VehiclePoller) Poll(ctx context.Context) (int, error) {
	vehiculos, err := p.lister.ListVehiculos(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	updated := 0
	for _, v := range vehiculos {
		if v.Lat == nil || v.Lng == nil || v.ID == "" {
			continue
		}
		p.store.Set(models.Posicion{
			VehiculoID:    v.ID.String(),
			Lat:           *v.Lat,
			Lng:           *v.Lng,
			Fuente:        models.FuentePolling,
			RecibidoEn:    now,
			ActualizadoEn: v.UltimaActualizacion,
		})
		updated++
	}
	return updated, nil
}

func (p *VehiclePoller) Run(ctx context.Context) error {
	return every(ctx, p.interval, func(ctx context.Context) {
		n, err := p.Poll(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("Error consultando posiciones de vehículos: ", err)
			}
			return
		}
		log.Debug("posiciones de vehículos actualizadas: ", n)
	})
}

// TeamPoller mantiene la última foto de los equipos para el mapa.
type TeamPoller struct {
	lister   EquipoLister
	interval time.Duration

	mu        sync.RWMutex
	equipos   []models.Equipo
	updatedAt time.Time
}

func NewTeamPoller(lister EquipoLister, interval time.Duration) *TeamPoller {
	return &TeamPoller{lister: lister, interval: interval}
}

func (p *TeamPoller) Name() string { return "equipos" }

func (p *TeamPoller) Poll(ctx context.Context) error {
	equipos, err := p.lister.ListEquipos(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.equipos = equipos
	p.updatedAt = time.Now()
	p.mu.Unlock()
	return nil
}

// Snapshot devuelve los últimos equipos obtenidos. Si la última consulta
// falló se mantiene la anterior.
func (p *TeamPoller) Snapshot() ([]models.Equipo, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Equipo, len(p.equipos))
	copy(out, p.equipos)
	return out, p.updatedAt
}

func (p *TeamPoller) Run(ctx context.Context) error {
	return every(ctx, p.interval, func(ctx context.Context) {
		if err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			log.Warn("Error consultando seguimiento de equipos: ", err)
		}
	})
}
