package tracking

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"flota-municipal-api/config"
	"flota-municipal-api/models"
)

// Source es una fuente de posiciones que corre hasta que ctx se cancele.
type Source interface {
	Name() string
	Run(ctx context.Context) error
}

// Persister guarda y recupera la foto de posiciones entre reinicios.
type Persister interface {
	SavePositions(positions []models.Posicion) error
	LoadPositions() ([]models.Posicion, error)
}

type Backend interface {
	VehiculoLister
	EquipoLister
}

// Tracker reúne el mapa de posiciones y todas las fuentes que lo alimentan.
type Tracker struct {
	Store  *Store
	Teams  *TeamPoller
	Socket *SocketFeed

	sources       []Source
	persister     Persister
	flushInterval time.Duration
}

// New arma las fuentes según la configuración: el simulador si hay
// vehículos de demostración, el socket si hay un vehículo a seguir y los
// pollers si hay backend. backend y persister pueden ser nil.
func New(cfg config.TrackingConfig, backendURL string, backend Backend, persister Persister) *Tracker {
	t := &Tracker{
		Store:         NewStore(cfg.PositionTTL),
		persister:     persister,
		flushInterval: cfg.FlushInterval,
	}

	if len(cfg.DemoVehicles) > 0 {
		t.sources = append(t.sources, NewSimulator(t.Store, cfg.DemoVehicles, cfg.SimulatorInterval, uint64(time.Now().UnixNano())))
	}

	socketURL := cfg.SocketURL
	if socketURL == "" {
		socketURL = backendURL
	}
	if cfg.SocketVehicleID != "" && socketURL != "" {
		t.Socket = NewSocketFeed(socketURL, cfg.SocketVehicleID, cfg.SocketInterval, cfg.ReconnectDelay, t.Store)
		t.sources = append(t.sources, t.Socket)
	}

	if backend != nil {
		t.sources = append(t.sources, NewVehiclePoller(backend, t.Store, cfg.PollInterval))
		t.Teams = NewTeamPoller(backend, cfg.TeamPollInterval)
		t.sources = append(t.sources, t.Teams)
	}

	return t
}

func (t *Tracker) Sources() []Source { return t.sources }

// Run precarga la última foto guardada y corre cada fuente en su propia
// goroutine. Las fuentes no se coordinan entre sí. Al cancelar ctx se
// guarda una última foto y se cierran los streams suscritos.
func (t *Tracker) Run(ctx context.Context) error {
	t.warm()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range t.sources {
		g.Go(func() error {
			log.Info("Fuente de posiciones iniciada: ", s.Name())
			err := s.Run(gctx)
			log.Info("Fuente de posiciones detenida: ", s.Name())
			return err
		})
	}

	if t.persister != nil && t.flushInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(t.flushInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					t.flush()
				}
			}
		})
	}

	err := g.Wait()
	t.flush()
	t.Store.Hub().Close()
	return err
}

func (t *Tracker) warm() {
	if t.persister == nil {
		return
	}
	positions, err := t.persister.LoadPositions()
	if err != nil {
		log.Warn("No se pudieron cargar las posiciones guardadas: ", err)
		return
	}
	n := t.Store.Load(positions, time.Now())
	log.Info("Posiciones recuperadas: ", n)
}

func (t *Tracker) flush() {
	t.Store.Prune()
	if t.persister == nil {
		return
	}
	if err := t.persister.SavePositions(t.Store.All()); err != nil {
		log.Warn("Error guardando posiciones: ", err)
	}
}
