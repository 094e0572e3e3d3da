package pkg

import (
	"sort"
	"time"

	"flota-municipal-api/models"
)

const (
	EstadoVerde     = "verde"
	EstadoAmarillo  = "amarillo"
	EstadoRojo      = "rojo"
	EstadoSinVisita = "sinVisita"
)

// Umbrales del semáforo de visitas, en días desde la última visita
const (
	DiasVerde    = 7
	DiasAmarillo = 14
)

type VisitStatus struct {
	Verde     int `json:"verde"`
	Amarillo  int `json:"amarillo"`
	Rojo      int `json:"rojo"`
	SinVisita int `json:"sinVisita"`
}

type AreaDetail struct {
	ID           models.ID  `json:"id"`
	Nombre       string     `json:"nombre"`
	Status       string     `json:"status"`
	Days         *int       `json:"days"`
	UltimaVisita *time.Time `json:"ultimaVisita,omitempty"`
	FechaVisita  string     `json:"fechaVisita,omitempty"`
}

type AreaDays struct {
	ID     models.ID `json:"id"`
	Nombre string    `json:"nombre"`
	Days   int       `json:"days"`
}

type AreaStatistics struct {
	Total                 int          `json:"total"`
	VisitStatus           VisitStatus  `json:"visitStatus"`
	AreaDetails           []AreaDetail `json:"areaDetails"`
	AreasByDaysSinceVisit []AreaDays   `json:"areasByDaysSinceVisit"`
}

// DaysSince cuenta días completos entre visit y now. Una fecha futura cuenta como 0.
func DaysSince(visit, now time.Time) int {
	d := int(now.Sub(visit).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

func VisitStatusFor(days *int) string {
	switch {
	case days == nil:
		return EstadoSinVisita
	case *days <= DiasVerde:
		return EstadoVerde
	case *days <= DiasAmarillo:
		return EstadoAmarillo
	default:
		return EstadoRojo
	}
}

// CalculateAreaStatistics clasifica cada área verde según su última visita.
// Las áreas sin visita solo aparecen en el bucket sinVisita y en areaDetails.
func CalculateAreaStatistics(areas []models.Zona, now time.Time) AreaStatistics {
	stats := AreaStatistics{
		Total:                 len(areas),
		AreaDetails:           make([]AreaDetail, 0, len(areas)),
		AreasByDaysSinceVisit: make([]AreaDays, 0, len(areas)),
	}

	for _, area := range areas {
		var days *int
		if area.UltimaVisita != nil {
			d := DaysSince(*area.UltimaVisita, now)
			days = &d
			stats.AreasByDaysSinceVisit = append(stats.AreasByDaysSinceVisit, AreaDays{
				ID:     area.ID,
				Nombre: area.Nombre,
				Days:   d,
			})
		}

		status := VisitStatusFor(days)
		switch status {
		case EstadoVerde:
			stats.VisitStatus.Verde++
		case EstadoAmarillo:
			stats.VisitStatus.Amarillo++
		case EstadoRojo:
			stats.VisitStatus.Rojo++
		default:
			stats.VisitStatus.SinVisita++
		}

		detail := AreaDetail{
			ID:           area.ID,
			Nombre:       area.Nombre,
			Status:       status,
			Days:         days,
			UltimaVisita: area.UltimaVisita,
		}
		if area.UltimaVisita != nil {
			detail.FechaVisita = FormatDate(*area.UltimaVisita, "default")
		}
		stats.AreaDetails = append(stats.AreaDetails, detail)
	}

	sort.SliceStable(stats.AreasByDaysSinceVisit, func(i, j int) bool {
		a, b := stats.AreasByDaysSinceVisit[i], stats.AreasByDaysSinceVisit[j]
		if a.Days != b.Days {
			return a.Days > b.Days
		}
		return a.Nombre < b.Nombre
	})

	return stats
}
