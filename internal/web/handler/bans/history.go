package bans

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/web/handler"
)

// historyEntryView is the JSON rendering of one audit entry.
type historyEntryView struct {
	ID        uint64          `json:"id"`
	Action    string          `json:"action"`
	ActorID   uint64          `json:"actorId"`
	ActorRole string          `json:"actorRole"`
	PlaceID   *uint64         `json:"placeId,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// History returns the audit entries of a ban, oldest first by default; pass
// ?order=desc for newest first. The order is stable and total in both
// directions.
func (s *Service) History(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	newestFirst := c.Query("order") == "desc"

	entries, err := s.engine.History(id, newestFirst)
	if err != nil {
		return handler.RespondError(c, err)
	}

	views := make([]historyEntryView, 0, len(entries))
	for i := range entries {
		views = append(views, historyView(&entries[i]))
	}

	return c.JSON(views)
}

func historyView(entry *models.AuditEntry) historyEntryView {
	return historyEntryView{
		ID:        entry.ID,
		Action:    string(entry.Action),
		ActorID:   entry.ActorID,
		ActorRole: string(entry.ActorRole),
		PlaceID:   entry.PlaceID,
		Details:   entry.Details,
		Timestamp: entry.CreatedAt,
	}
}
