package pkg

import "flota-municipal-api/models"

// AvailableSuperForms devuelve los super forms que aún no tienen orden de trabajo.
func AvailableSuperForms(forms []models.SuperForm) []models.SuperForm {
	out := make([]models.SuperForm, 0, len(forms))
	for _, f := range forms {
		if f.WorkOrderID == nil {
			out = append(out, f)
		}
	}
	return out
}
