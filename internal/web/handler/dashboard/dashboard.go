// Package dashboard provides the landing-page counters of the admin frontend.
package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/config"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/roles"
	"github.com/bandesk/bandesk/internal/web/handler"
)

const (
	// Path is the dashboard counters endpoint.
	Path = handler.RootPath + "dashboard"
)

// Service provides the dashboard endpoint.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, auth.RequireRole(roles.RoleStaff), s.Get)
}

type counters struct {
	Persons          int64 `json:"persons"`
	Places           int64 `json:"places"`
	Bans             int64 `json:"bans"`
	ActiveBans       int64 `json:"activeBans"`
	PendingApprovals int64 `json:"pendingApprovals"`
	ViolationsWeek   int64 `json:"violationsLastWeek"`
}

// Get returns the dashboard counters in a single response.
func (s *Service) Get(c *fiber.Ctx) error {
	var out counters

	weekAgo := time.Now().AddDate(0, 0, -7)

	queries := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&out.Persons, s.db.Model(&models.Person{})},
		{&out.Places, s.db.Model(&models.Place{})},
		{&out.Bans, s.db.Model(&models.Ban{})},
		{&out.ActiveBans, s.db.Model(&models.Ban{}).Where("is_active = ?", true)},
		{&out.PendingApprovals, s.db.Model(&models.PlaceApproval{}).Where("status = ?", models.PlaceApprovalPending)},
		{&out.ViolationsWeek, s.db.Model(&models.Violation{}).Where("occurred_at >= ?", weekAgo)},
	}

	for _, q := range queries {
		if err := q.query.Count(q.dest).Error; err != nil {
			log.Error().Err(err).Msg("failed to compute dashboard counters")
			return c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	return c.JSON(out)
}
