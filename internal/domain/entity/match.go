package entity

import (
	"strings"

	"golang.org/x/text/cases"
)

// ContainsFold indica si sub aparece en s sin distinguir mayúsculas (Unicode).
// sub vacío (o solo espacios) siempre coincide.
func ContainsFold(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(sub))
}

// Matches búsqueda del catálogo: q en nombre, categoría o unidad.
func (i *Item) Matches(q string) bool {
	return ContainsFold(i.Name, q) || ContainsFold(i.Category, q) || ContainsFold(i.UnitOfMeasure, q)
}
