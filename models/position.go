package models

import "time"

const (
	FuenteSimulador = "simulador"
	FuenteSocket    = "socket"
	FuentePolling   = "polling"
)

// Posicion es la última posición conocida de un vehículo. RecibidoEn es
// cuándo llegó al servidor; ActualizadoEn, la hora que informa el backend.
type Posicion struct {
	VehiculoID    string     `json:"vehiculoId"`
	Lat           float64    `json:"lat"`
	Lng           float64    `json:"lng"`
	Fuente        string     `json:"fuente"`
	RecibidoEn    time.Time  `json:"recibidoEn"`
	ActualizadoEn *time.Time `json:"actualizadoEn,omitempty"`
}
