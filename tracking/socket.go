package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"
	log "github.com/sirupsen/logrus"

	"flota-municipal-api/models"
)

const (
	PositionNamespace = "/position"
	EventoSolicitud   = "obtener posicion"
)

// Nombres con los que el servidor anuncia una posición nueva
var eventosPosicion = map[string]bool{
	"posicion-actualizada": true,
	"posicion actualizada": true,
}

// Estados de la conexión
const (
	EstadoDesconectado = "desconectado"
	EstadoConectando   = "conectando"
	EstadoConectado    = "conectado"
)

const handshakeTimeout = 10 * time.Second

// SocketFeed pide la posición de un vehículo por Socket.IO y guarda cada
// respuesta. Si la conexión cae, reintenta tras un retardo fijo.
type SocketFeed struct {
	baseURL        string
	vehiculoID     string
	interval       time.Duration
	reconnectDelay time.Duration
	store          *Store
	dialer         *websocket.Dialer

	state   *fsm.FSM
	writeMu sync.Mutex
}

func NewSocketFeed(baseURL, vehiculoID string, interval, reconnectDelay time.Duration, store *Store) *SocketFeed {
	f := &SocketFeed{
		baseURL:        baseURL,
		vehiculoID:     vehiculoID,
		interval:       interval,
		reconnectDelay: reconnectDelay,
		store:          store,
		dialer:         &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
	f.state = fsm.NewFSM(
		EstadoDesconectado,
		fsm.Events{
			{Name: "conectar", Src: []string{EstadoDesconectado}, Dst: EstadoConectando},
			{Name: "abrir", Src: []string{EstadoConectando}, Dst: EstadoConectado},
			{Name: "cerrar", Src: []string{EstadoConectando, EstadoConectado}, Dst: EstadoDesconectado},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.WithFields(log.Fields{"desde": e.Src, "hacia": e.Dst}).Info("Socket de posiciones")
			},
		},
	)
	return f
}

func (f *SocketFeed) Name() string { return models.FuenteSocket }

func (f *SocketFeed) State() string { return f.state.Current() }

func (f *SocketFeed) transition(ctx context.Context, event string) {
	if !f.state.Can(event) {
		return
	}
	if err := f.state.Event(ctx, event); err != nil {
		log.Debug("transición de socket ignorada: ", err)
	}
}

func (f *SocketFeed) Run(ctx context.Context) error {
	for {
		err := f.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("Conexión de posiciones perdida, reintentando en ", f.reconnectDelay, ": ", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.reconnectDelay):
		}
	}
}

func (f *SocketFeed) write(conn *websocket.Conn, msg []byte) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// session atiende una conexión completa: handshake, conexión al namespace,
// envío periódico de solicitudes y lectura de eventos hasta que algo falle.
func (f *SocketFeed) session(ctx context.Context) error {
	f.transition(ctx, "conectar")
	// el cierre se registra aunque ctx ya esté cancelado
	defer f.transition(context.Background(), "cerrar")

	wsURL, err := socketURL(f.baseURL)
	if err != nil {
		return fmt.Errorf("URL de socket inválida: %w", err)
	}

	conn, _, err := f.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("error conectando a %s: %w", wsURL, err)
	}

	sctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-sctx.Done()
		conn.Close()
	}()

	emitting := false
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if sctx.Err() != nil {
				return sctx.Err()
			}
			return fmt.Errorf("error leyendo del socket: %w", err)
		}

		p, err := parsePacket(msg)
		if err != nil {
			log.Debug("paquete ignorado: ", err)
			continue
		}

		switch p.eio {
		case eioOpen:
			if err := f.write(conn, connectPacket(PositionNamespace)); err != nil {
				return err
			}
		case eioPing:
			if err := f.write(conn, []byte{eioPong}); err != nil {
				return err
			}
		case eioClose:
			return errors.New("el servidor cerró la conexión")
		case eioMessage:
			if p.namespace != PositionNamespace {
				continue
			}
			switch p.sio {
			case sioConnect:
				f.transition(sctx, "abrir")
				if !emitting {
					emitting = true
					wg.Add(1)
					go func() {
						defer wg.Done()
						f.emitLoop(sctx, conn)
					}()
				}
			case sioConnectError:
				return fmt.Errorf("el servidor rechazó el namespace %s: %s", PositionNamespace, p.payload)
			case sioDisconnect:
				return errors.New("el servidor desconectó el namespace")
			case sioEvent:
				f.handleEvent(p.payload)
			}
		}
	}
}

func (f *SocketFeed) emitLoop(ctx context.Context, conn *websocket.Conn) {
	msg, err := eventPacket(PositionNamespace, EventoSolicitud, f.vehiculoID)
	if err != nil {
		log.Warn("Error armando solicitud de posición: ", err)
		return
	}
	_ = every(ctx, f.interval, func(ctx context.Context) {
		if err := f.write(conn, msg); err != nil && ctx.Err() == nil {
			log.Warn("Error enviando solicitud de posición: ", err)
		}
	})
}

func (f *SocketFeed) handleEvent(payload []byte) {
	name, args, err := decodeEvent(payload)
	if err != nil {
		log.Debug("evento ignorado: ", err)
		return
	}
	if !eventosPosicion[name] || len(args) == 0 {
		return
	}

	lat, lng, ok := extractLatLng(args[0])
	if !ok {
		log.Warn("Posición sin coordenadas recibida: ", string(args[0]))
		return
	}
	f.store.Set(models.Posicion{
		VehiculoID: f.vehiculoID,
		Lat:        lat,
		Lng:        lng,
		Fuente:     models.FuenteSocket,
		RecibidoEn: time.Now(),
	})
}
