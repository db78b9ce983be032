package bans

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/web/handler"
)

// RecordViolation appends a timestamped violation to the ban.
func (s *Service) RecordViolation(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	occurredAt, err := s.engine.RecordViolation(id, actor)
	if err != nil {
		return handler.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"occurredAt": occurredAt})
}
