package tracking

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Tipos de paquete Engine.IO v4
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Tipos de paquete Socket.IO v5 (dentro de un mensaje Engine.IO)
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

var errPaqueteVacio = errors.New("paquete vacío")

type packet struct {
	eio       byte
	sio       byte
	namespace string
	payload   []byte
}

func parsePacket(msg []byte) (packet, error) {
	if len(msg) == 0 {
		return packet{}, errPaqueteVacio
	}
	p := packet{eio: msg[0]}
	if p.eio != eioMessage {
		p.payload = msg[1:]
		return p, nil
	}
	if len(msg) < 2 {
		return packet{}, fmt.Errorf("mensaje socket.io incompleto: %q", msg)
	}
	p.sio = msg[1]
	rest := msg[2:]

	p.namespace = "/"
	if len(rest) > 0 && rest[0] == '/' {
		if i := bytes.IndexByte(rest, ','); i >= 0 {
			p.namespace = string(rest[:i])
			rest = rest[i+1:]
		} else {
			p.namespace = string(rest)
			rest = nil
		}
	}

	// id de ack opcional antes del payload
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	p.payload = rest[i:]
	return p, nil
}

func connectPacket(namespace string) []byte {
	return []byte(string([]byte{eioMessage, sioConnect}) + namespace + ",")
}

func eventPacket(namespace, event string, args ...any) ([]byte, error) {
	payload, err := json.Marshal(append([]any{event}, args...))
	if err != nil {
		return nil, err
	}
	prefix := string([]byte{eioMessage, sioEvent})
	if namespace != "" && namespace != "/" {
		prefix += namespace + ","
	}
	return append([]byte(prefix), payload...), nil
}

func decodeEvent(payload []byte) (string, []jsoniter.RawMessage, error) {
	var parts []jsoniter.RawMessage
	if err := json.Unmarshal(payload, &parts); err != nil {
		return "", nil, fmt.Errorf("evento inválido: %w", err)
	}
	if len(parts) == 0 {
		return "", nil, errors.New("evento sin nombre")
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, fmt.Errorf("nombre de evento inválido: %w", err)
	}
	return name, parts[1:], nil
}

// socketURL convierte la URL base del servidor en la URL websocket de Engine.IO.
func socketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("esquema no soportado: %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket.io/"
	}
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var (
	latKeys    = []string{"lat", "latitud", "latitude"}
	lngKeys    = []string{"lng", "lon", "longitud", "longitude"}
	nestedKeys = []string{"data", "posicion", "position", "coords"}
)

// extractLatLng busca coordenadas en el payload de una actualización de
// posición, que puede venir plano o anidado.
func extractLatLng(raw jsoniter.RawMessage) (float64, float64, bool) {
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, 0, false
	}
	lat, okLat := firstNumber(fields, latKeys)
	lng, okLng := firstNumber(fields, lngKeys)
	if okLat && okLng {
		return lat, lng, true
	}
	for _, k := range nestedKeys {
		if inner, ok := fields[k]; ok {
			if lat, lng, ok := extractLatLng(inner); ok {
				return lat, lng, true
			}
		}
	}
	return 0, 0, false
}

func firstNumber(fields map[string]jsoniter.RawMessage, keys []string) (float64, bool) {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
