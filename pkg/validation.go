package pkg

import (
	"regexp"
	"strings"

	"flota-municipal-api/models"
)

var (
	// RUT chileno con puntos y guion: 12.345.678-K
	rutRegex      = regexp.MustCompile(`^\d{1,2}\.\d{3}\.\d{3}-[\dkK]$`)
	telefonoRegex = regexp.MustCompile(`^\+56 ?9 ?\d{4} ?\d{4}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func IsValidRut(rut string) bool {
	return rutRegex.MatchString(strings.TrimSpace(rut))
}

func IsValidTelefono(telefono string) bool {
	return telefonoRegex.MatchString(strings.TrimSpace(telefono))
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// ValidarContacto revisa los campos opcionales de una persona. Los campos
// vacíos no se validan. Devuelve un mensaje por campo inválido.
func ValidarContacto(rut, telefono, email string) map[string]string {
	errs := map[string]string{}
	if rut != "" && !IsValidRut(rut) {
		errs["rut"] = "RUT inválido, formato esperado 12.345.678-K"
	}
	if telefono != "" && !IsValidTelefono(telefono) {
		errs["telefono"] = "Teléfono inválido, formato esperado +56 9 1234 5678"
	}
	if email != "" && !IsValidEmail(email) {
		errs["email"] = "Email inválido"
	}
	return errs
}

func ValidarTrabajador(t models.Trabajador) map[string]string {
	errs := ValidarContacto(t.Rut, t.Telefono, t.Email)
	if strings.TrimSpace(t.Nombre) == "" {
		errs["nombre"] = "El nombre es obligatorio"
	}
	return errs
}

func ValidarSupervisor(s models.Supervisor) map[string]string {
	errs := ValidarContacto(s.Rut, s.Telefono, s.Email)
	if strings.TrimSpace(s.Nombre) == "" {
		errs["nombre"] = "El nombre es obligatorio"
	}
	return errs
}
