package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
//
//	ValidationError          400 VALIDATION
//	NotFoundError            404 NOT_FOUND
//	InsufficientStockError   409 INSUFFICIENT_STOCK (con disponible/solicitado)
//	ConcurrencyConflictError 409 CONCURRENCY_CONFLICT (reintentable)
//	ErrConflict / Duplicate  409 CONFLICT
//	PersistenceError         503 PERSISTENCE
//	otro                     500 INTERNAL
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var (
		ve  *domain.ValidationError
		nf  *domain.NotFoundError
		ise *domain.InsufficientStockError
		cce *domain.ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: ve.Error(), Details: &dto.ErrorDetails{Field: ve.Field},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "NOT_FOUND", Message: nf.Error(), Details: &dto.ErrorDetails{ItemID: nf.ID},
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.As(err, &ise):
		available, requested := ise.Available, ise.Requested
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: ise.Error(),
			Details: &dto.ErrorDetails{ItemID: ise.ItemID, Available: &available, Requested: &requested},
		})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.As(err, &cce):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "CONCURRENCY_CONFLICT",
			Message: "conflicto de concurrencia, reintente la operación",
			Details: &dto.ErrorDetails{ItemID: cce.ItemID, Retryable: true},
		})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente la operación",
			Details: &dto.ErrorDetails{Retryable: true},
		})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el item tiene movimientos registrados"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrPersistence):
		log.Error().Err(err).Str("path", c.Path()).Msg("fallo de persistencia")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "PERSISTENCE", Message: "almacenamiento no disponible, intente más tarde",
			Details: &dto.ErrorDetails{Retryable: true},
		})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
