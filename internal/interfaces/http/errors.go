package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// respondError traduce la taxonomía de errores de dominio a HTTP. Los detalles de
// almacenamiento se registran pero no se exponen al cliente.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		ve *domain.ValidationError
		se *domain.StateError
		ce *domain.ConflictError
		st *domain.StorageError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.As(err, &se):
		code := "INVALID_STATE"
		if errors.Is(err, domain.ErrInsufficientStock) {
			code = "INSUFFICIENT_STOCK"
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: code, Message: se.Error()})
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: ce.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.As(err, &st):
		log.Error().Err(err).Str("path", c.Path()).Msg("fallo de almacenamiento")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "almacenamiento no disponible, intente más tarde"})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error no clasificado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
