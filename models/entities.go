package models

import "time"

type Trabajador struct {
	ID       ID     `json:"id"`
	Nombre   string `json:"nombre"`
	Rut      string `json:"rut,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
	EquipoID *ID    `json:"equipoId,omitempty"`
}

type Supervisor struct {
	ID       ID     `json:"id"`
	Nombre   string `json:"nombre"`
	Rut      string `json:"rut,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
}

type Vehiculo struct {
	ID                  ID         `json:"id"`
	Patente             string     `json:"patente"`
	Marca               string     `json:"marca,omitempty"`
	Modelo              string     `json:"modelo,omitempty"`
	Lat                 *float64   `json:"lat,omitempty"`
	Lng                 *float64   `json:"lng,omitempty"`
	UltimaActualizacion *time.Time `json:"ultimaActualizacion,omitempty"`
}

// Equipo (o escuadra) une un supervisor, un vehículo y una zona.
type Equipo struct {
	ID           ID           `json:"id"`
	Nombre       string       `json:"nombre"`
	Supervisor   *Supervisor  `json:"supervisor,omitempty"`
	Vehiculo     *Vehiculo    `json:"vehiculo,omitempty"`
	Zona         *Zona        `json:"zona,omitempty"`
	Trabajadores []Trabajador `json:"trabajadores"`
}

type Beacon struct {
	ID         ID          `json:"id"`
	Mac        string      `json:"mac"`
	Nombre     string      `json:"nombre,omitempty"`
	Bateria    *int        `json:"bateria,omitempty"`
	Empleado   *Trabajador `json:"empleado,omitempty"`
	Supervisor *Supervisor `json:"supervisor,omitempty"`
	Vehiculo   *Vehiculo   `json:"vehiculo,omitempty"`
	Zona       *Zona       `json:"zona,omitempty"`
}

type Gateway struct {
	ID     ID     `json:"id"`
	Mac    string `json:"mac"`
	Nombre string `json:"nombre,omitempty"`
	Zona   *Zona  `json:"zona,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Zona es un área verde: un polígono con la fecha de la última visita.
type Zona struct {
	ID           ID         `json:"id"`
	Nombre       string     `json:"nombre"`
	Poligono     []LatLng   `json:"poligono,omitempty"`
	UltimaVisita *time.Time `json:"ultimaVisita,omitempty"`
}

type FormularioVisita struct {
	ID            ID        `json:"id"`
	ZonaID        *ID       `json:"zonaId,omitempty"`
	EquipoID      *ID       `json:"equipoId,omitempty"`
	Fecha         time.Time `json:"fecha"`
	Observaciones string    `json:"observaciones,omitempty"`
	Fotos         []string  `json:"fotos,omitempty"`
}

type OrdenTrabajo struct {
	ID           ID     `json:"id"`
	Titulo       string `json:"titulo"`
	Descripcion  string `json:"descripcion,omitempty"`
	Estado       string `json:"estado,omitempty"`
	EquipoID     *ID    `json:"equipoId,omitempty"`
	ZonaID       *ID    `json:"zonaId,omitempty"`
	FormularioID *ID    `json:"formularioId,omitempty"`
	SuperFormID  *ID    `json:"superFormId,omitempty"`
}

// SuperForm es un reporte de terreno con foto que espera convertirse en orden de trabajo.
type SuperForm struct {
	ID          ID        `json:"id"`
	Descripcion string    `json:"descripcion,omitempty"`
	FotoURL     string    `json:"fotoUrl,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	Fecha       time.Time `json:"fecha"`
	WorkOrderID *ID       `json:"workOrderID"`
}
