package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
	ErrPersistence         = errors.New("error de persistencia")
)

// ValidationError entrada rechazada antes de tocar el almacenamiento.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError recurso referenciado que no existe (p. ej. item_id desconocido).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError la salida pedida supera el stock disponible.
// El mensaje se muestra tal cual al usuario.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	name := e.ItemName
	if name == "" {
		name = e.ItemID
	}
	return fmt.Sprintf("estoque insuficiente para %q: disponible %d, solicitado %d", name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConcurrencyConflictError el almacenamiento no pudo serializar la operación; se puede reintentar.
type ConcurrencyConflictError struct {
	ItemID string
	Err    error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("conflicto de concurrencia en item %q, reintente", e.ItemID)
	}
	return fmt.Sprintf("conflicto de concurrencia en item %q, reintente: %v", e.ItemID, e.Err)
}

func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }
func (e *ConcurrencyConflictError) Unwrap() error        { return e.Err }

// PersistenceError fallo del almacenamiento al leer o escribir.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
func (e *PersistenceError) Unwrap() error        { return e.Err }
