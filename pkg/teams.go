package pkg

import "flota-municipal-api/models"

const (
	EquipoActivo   = "Activo"
	EquipoDisuelto = "Disuelto"
)

// Un equipo con menos trabajadores que esto se considera disuelto
const MinTrabajadoresActivo = 2

type EquipoConEstado struct {
	models.Equipo
	Estado string `json:"estado"`
}

func TeamStatus(e models.Equipo) string {
	if len(e.Trabajadores) >= MinTrabajadoresActivo {
		return EquipoActivo
	}
	return EquipoDisuelto
}

func WithTeamStatus(equipos []models.Equipo) []EquipoConEstado {
	out := make([]EquipoConEstado, 0, len(equipos))
	for _, e := range equipos {
		out = append(out, EquipoConEstado{Equipo: e, Estado: TeamStatus(e)})
	}
	return out
}
