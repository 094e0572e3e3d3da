package pkg

import "flota-municipal-api/models"

const SinAsignar = "Sin asignar"

const (
	AsignacionEmpleado   = "empleado"
	AsignacionSupervisor = "supervisor"
	AsignacionVehiculo   = "vehiculo"
	AsignacionZona       = "zona"
)

type BeaconAssignment struct {
	Tipo   string    `json:"tipo,omitempty"`
	ID     models.ID `json:"id,omitempty"`
	Nombre string    `json:"nombre"`
}

type BeaconConAsignacion struct {
	models.Beacon
	Asignacion BeaconAssignment `json:"asignacion"`
}

// ResolveBeaconAssignment devuelve a quién está asignado el beacon.
// Precedencia: empleado > supervisor > vehiculo > zona.
func ResolveBeaconAssignment(b models.Beacon) BeaconAssignment {
	switch {
	case b.Empleado != nil:
		return BeaconAssignment{Tipo: AsignacionEmpleado, ID: b.Empleado.ID, Nombre: b.Empleado.Nombre}
	case b.Supervisor != nil:
		return BeaconAssignment{Tipo: AsignacionSupervisor, ID: b.Supervisor.ID, Nombre: b.Supervisor.Nombre}
	case b.Vehiculo != nil:
		return BeaconAssignment{Tipo: AsignacionVehiculo, ID: b.Vehiculo.ID, Nombre: b.Vehiculo.Patente}
	case b.Zona != nil:
		return BeaconAssignment{Tipo: AsignacionZona, ID: b.Zona.ID, Nombre: b.Zona.Nombre}
	}
	return BeaconAssignment{Nombre: SinAsignar}
}

func WithAssignments(beacons []models.Beacon) []BeaconConAsignacion {
	out := make([]BeaconConAsignacion, 0, len(beacons))
	for _, b := range beacons {
		out = append(out, BeaconConAsignacion{Beacon: b, Asignacion: ResolveBeaconAssignment(b)})
	}
	return out
}
