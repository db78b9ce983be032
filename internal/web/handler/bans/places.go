package bans

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/web/handler"
)

// AddPlace attaches one more place to the ban.
func (s *Service) AddPlace(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	in := new(addPlaceRequest)
	if err = c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err = s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	approval, err := s.engine.AddPlace(id, in.PlaceID, actor)
	if err != nil {
		return handler.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(approvalView{
		PlaceID:     approval.PlaceID,
		Status:      string(approval.Status),
		DecidedByID: approval.DecidedByID,
		DecidedAt:   approval.DecidedAt,
	})
}

// RemovePlace detaches a place from the ban, subject to the last-place rules.
func (s *Service) RemovePlace(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	placeID, err := paramID(c, "placeId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid placeId"})
	}

	if err = s.engine.RemovePlace(id, placeID, actor); err != nil {
		return handler.RespondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Decide applies an approve or reject decision to a pending place approval.
func (s *Service) Decide(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	placeID, err := paramID(c, "placeId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid placeId"})
	}

	in := new(decisionRequest)
	if err = c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	record, err := s.engine.DecideApproval(id, placeID, in.Approve, actor)
	if err != nil {
		return handler.RespondError(c, err)
	}

	return c.JSON(viewFor(record))
}
