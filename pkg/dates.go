package pkg

import (
	"fmt"
	"time"
)

var mesesCortos = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

var mesesLargos = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}

// FormatDate formatea una fecha para el panel:
//
//	"short" -> 5/3
//	"long"  -> 5 de marzo de 2024
//	otro    -> 5 mar 2024
func FormatDate(t time.Time, format string) string {
	switch format {
	case "short":
		return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
	case "long":
		return fmt.Sprintf("%d de %s de %d", t.Day(), mesesLargos[t.Month()-1], t.Year())
	default:
		return fmt.Sprintf("%d %s %d", t.Day(), mesesCortos[t.Month()-1], t.Year())
	}
}
