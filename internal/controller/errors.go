package controller

import (
	"context"
	"errors"

	"github.com/benbeisheim/alphabeta-chess/internal/engine"
	"github.com/benbeisheim/alphabeta-chess/internal/model"
	"github.com/benbeisheim/alphabeta-chess/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidMode),
		errors.Is(err, engine.ErrInvalidFEN),
		errors.Is(err, service.ErrInvalidOptions),
		errors.Is(err, model.ErrIllegalMove):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrNotInGame),
		errors.Is(err, model.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrNotAITurn),
		errors.Is(err, model.ErrStaleSearch),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, model.ErrGameExists):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrAIBusy):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
