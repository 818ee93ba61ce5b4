package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/estoque-api/pkg/calendar"
)

// MovementKind tipo de movimiento del historial.
type MovementKind string

const (
	MovementKindEntry MovementKind = "entrada"
	MovementKindExit  MovementKind = "salida"
)

// Entry entrada de estoque. Inmutable una vez registrada.
type Entry struct {
	ID         string
	Seq        int64 // orden de inserción, asignado por el almacenamiento
	ItemID     string
	Quantity   int64
	OccurredOn calendar.Date
	Note       string
	ActorID    string
	CreatedAt  time.Time
}

// Exit salida de estoque. Inmutable una vez registrada.
type Exit struct {
	ID          string
	Seq         int64
	ItemID      string
	Quantity    int64
	OccurredOn  calendar.Date
	Destination string
	Beneficiary string
	Campaign    string
	Note        string
	ActorID     string
	CreatedAt   time.Time
}

// Details texto "Destino: x, Beneficiario: y, Campaña: z" con las partes no vacías.
func (e *Exit) Details() string {
	parts := make([]string, 0, 3)
	if e.Destination != "" {
		parts = append(parts, "Destino: "+e.Destination)
	}
	if e.Beneficiary != "" {
		parts = append(parts, "Beneficiario: "+e.Beneficiary)
	}
	if e.Campaign != "" {
		parts = append(parts, "Campaña: "+e.Campaign)
	}
	return strings.Join(parts, ", ")
}

// Movement vista unificada de una entrada o salida para el historial.
// Exactamente uno de Entry/Exit está definido, según Kind.
type Movement struct {
	Kind       MovementKind
	ID         string
	Seq        int64
	ItemID     string
	ItemName   string
	Quantity   int64
	OccurredOn calendar.Date
	ActorID    string
	ActorName  string
	Details    string
	CreatedAt  time.Time

	Entry *Entry
	Exit  *Exit
}

// MovementFromEntry envuelve una entrada. ItemName/ActorName los completa quien lee.
func MovementFromEntry(e *Entry) Movement {
	return Movement{
		Kind:       MovementKindEntry,
		ID:         e.ID,
		Seq:        e.Seq,
		ItemID:     e.ItemID,
		Quantity:   e.Quantity,
		OccurredOn: e.OccurredOn,
		ActorID:    e.ActorID,
		Details:    e.Note,
		CreatedAt:  e.CreatedAt,
		Entry:      e,
	}
}

// MovementFromExit envuelve una salida.
func MovementFromExit(e *Exit) Movement {
	return Movement{
		Kind:       MovementKindExit,
		ID:         e.ID,
		Seq:        e.Seq,
		ItemID:     e.ItemID,
		Quantity:   e.Quantity,
		OccurredOn: e.OccurredOn,
		ActorID:    e.ActorID,
		Details:    e.Details(),
		CreatedAt:  e.CreatedAt,
		Exit:       e,
	}
}
