// Package bans provides the JSON handlers for ban records, their place
// approvals, violations and audit history.
package bans

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/ban"
	"github.com/bandesk/bandesk/internal/config"
	"github.com/bandesk/bandesk/internal/directory"
	"github.com/bandesk/bandesk/internal/roles"
	"github.com/bandesk/bandesk/internal/web/handler"
)

const (
	// Path is the base path for ban management.
	Path = handler.RootPath + "bans"
)

// Service provides the ban endpoints.
type Service struct {
	cfg       *config.Config
	engine    *ban.Service
	validator *validator.Validate
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
	s.engine = ban.NewService(db, directory.NewService(db))
	s.validator = validator.New()

	// Routes. Staff can read and file new bans; every decision beyond that
	// needs management roles, which the engine enforces again per place.
	app.Get(Path, auth.RequireRole(roles.RoleStaff), s.List)
	app.Post(Path, auth.RequireRole(roles.RoleStaff), s.Create)
	app.Get(Path+"/:id", auth.RequireRole(roles.RoleStaff), s.Get)
	app.Put(Path+"/:id", auth.RequireRole(roles.RoleManager), s.Update)
	app.Delete(Path+"/:id", auth.RequireRole(roles.RoleHeadManager), s.Delete)

	app.Get(Path+"/:id/history", auth.RequireRole(roles.RoleStaff), s.History)

	app.Post(Path+"/:id/places", auth.RequireRole(roles.RoleManager), s.AddPlace)
	app.Delete(Path+"/:id/places/:placeId", auth.RequireRole(roles.RoleManager), s.RemovePlace)
	app.Post(Path+"/:id/places/:placeId/decision", auth.RequireRole(roles.RoleManager), s.Decide)

	app.Post(Path+"/:id/violations", auth.RequireRole(roles.RoleManager), s.RecordViolation)
}

// List returns ban records, optionally filtered by person and active flag.
func (s *Service) List(c *fiber.Ctx) error {
	var personID *uint64

	if raw := c.Query("personId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid personId"})
		}

		personID = &parsed
	}

	records, err := s.engine.List(personID, c.QueryBool("activeOnly", false))
	if err != nil {
		return handler.RespondError(c, err)
	}

	views := make([]banView, 0, len(records))
	for i := range records {
		views = append(views, viewFor(&records[i]))
	}

	return c.JSON(views)
}

// Get returns one ban record with approvals and violations.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	record, err := s.engine.Get(id)
	if err != nil {
		return handler.RespondError(c, err)
	}

	return c.JSON(viewFor(record))
}

// Create files a new ban record.
func (s *Service) Create(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	in := new(createRequest)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	engineIn, err := in.toCreateInput()
	if err != nil {
		return handler.RespondError(c, err)
	}

	record, err := s.engine.Create(engineIn, actor)
	if err != nil {
		return handler.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(viewFor(record))
}

// Update edits ban fields, including the date range or its duration form.
func (s *Service) Update(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	in := new(updateRequest)
	if err = c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	current, err := s.engine.Get(id)
	if err != nil {
		return handler.RespondError(c, err)
	}

	engineIn, err := in.toUpdateInput(current)
	if err != nil {
		return handler.RespondError(c, err)
	}

	record, err := s.engine.Update(id, engineIn, actor)
	if err != nil {
		return handler.RespondError(c, err)
	}

	return c.JSON(viewFor(record))
}

// Delete removes a ban record irreversibly.
func (s *Service) Delete(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	if err = s.engine.Delete(id, actor); err != nil {
		return handler.RespondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// paramID parses a numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint64, error) {
	return strconv.ParseUint(c.Params(name), 10, 64)
}
