package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"contact-tracker/internal/delivery/http/middleware"
	"contact-tracker/internal/domain/user"
	"contact-tracker/internal/pkg/response"
	"contact-tracker/internal/usecase"
)

// mapUsecaseError translates usecase sentinels into HTTP errors. notFound is
// the message used for ErrNotFound.
func mapUsecaseError(err error, notFound string) error {
	if err == nil {
		return nil
	}

	var inputErr *usecase.InputError
	switch {
	case errors.As(err, &inputErr):
		return middleware.NewAppError(fiber.StatusBadRequest, inputErr.Msg, nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, notFound, nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Access denied", nil, err)
	case errors.Is(err, usecase.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Conflict", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func principal(c fiber.Ctx) (user.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return user.Principal{}, middleware.NewAppError(fiber.StatusUnauthorized, "Not authenticated", nil, nil)
	}
	return p, nil
}

func badRequest(message string, cause error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, message, nil, cause)
}
