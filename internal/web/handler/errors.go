package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bandesk/bandesk/internal/apperr"
	"github.com/bandesk/bandesk/internal/ban"
)

// RespondError maps an engine failure onto the HTTP surface. Validation and
// conflict messages are passed through verbatim; authorization failures stay
// generic; unavailability asks the caller to retry.
func RespondError(c *fiber.Ctx, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ve.Reason,
			"field": ve.Field,
		})
	}

	switch {
	case apperr.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case apperr.IsAuthorization(err):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permission"})
	case apperr.IsUnavailable(err):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporarily unavailable, retry later"})
	case errors.Is(err, ban.ErrBanNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "ban not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
