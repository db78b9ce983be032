// Package persons provides the JSON handlers for the person registry and the
// per-person active-ban status check.
package persons

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/ban"
	"github.com/bandesk/bandesk/internal/config"
	"github.com/bandesk/bandesk/internal/db/models"
	"github.com/bandesk/bandesk/internal/directory"
	"github.com/bandesk/bandesk/internal/roles"
	"github.com/bandesk/bandesk/internal/web/handler"
)

const (
	// Path is the base path for the person registry.
	Path = handler.RootPath + "persons"

	dateLayout = "2006-01-02"
)

// Service provides the person endpoints.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
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
	s.db = db
	s.engine = ban.NewService(db, directory.NewService(db))
	s.validator = validator.New()

	app.Get(Path, auth.RequireRole(roles.RoleStaff), s.List)
	app.Post(Path, auth.RequireRole(roles.RoleStaff), s.Create)
	app.Get(Path+"/:id", auth.RequireRole(roles.RoleStaff), s.Get)
	app.Put(Path+"/:id", auth.RequireRole(roles.RoleManager), s.Update)
	app.Delete(Path+"/:id", auth.RequireRole(roles.RoleHeadManager), s.Delete)

	app.Get(Path+"/:id/ban-status", auth.RequireRole(roles.RoleStaff), s.BanStatus)
}

type personRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	DateOfBirth string `json:"dateOfBirth"`
	Notes       string `json:"notes"`
}

type personView struct {
	ID          uint64    `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth *string   `json:"dateOfBirth,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func viewFor(p *models.Person) personView {
	view := personView{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if p.DateOfBirth != nil {
		formatted := p.DateOfBirth.Format(dateLayout)
		view.DateOfBirth = &formatted
	}

	return view
}

// List returns persons, optionally filtered by a name fragment.
func (s *Service) List(c *fiber.Ctx) error {
	query := s.db.Order("last_name, first_name")

	if q := c.Query("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", pattern, pattern)
	}

	var persons []models.Person

	if err := query.Find(&persons).Error; err != nil {
		log.Error().Err(err).Msg("failed to list persons")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	views := make([]personView, 0, len(persons))
	for i := range persons {
		views = append(views, viewFor(&persons[i]))
	}

	return c.JSON(views)
}

// Get returns one person.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var person models.Person

	err = s.db.First(&person, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "person not found"})
	}

	if err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to load person")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(viewFor(&person))
}

// Create adds a person to the registry.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(personRequest)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	person := models.Person{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Notes:     in.Notes,
	}

	if in.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, in.DateOfBirth)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dateOfBirth: expected date in format " + dateLayout})
		}

		person.DateOfBirth = &dob
	}

	if err := s.db.Create(&person).Error; err != nil {
		log.Error().Err(err).Msg("failed to create person")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusCreated).JSON(viewFor(&person))
}

// Update edits a person's fields.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	in := new(personRequest)
	if err = c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err = s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var person models.Person

	err = s.db.First(&person, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "person not found"})
	}

	if err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to load person")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	person.FirstName = in.FirstName
	person.LastName = in.LastName
	person.Notes = in.Notes
	person.DateOfBirth = nil

	if in.DateOfBirth != "" {
		dob, parseErr := time.Parse(dateLayout, in.DateOfBirth)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "dateOfBirth: expected date in format " + dateLayout})
		}

		person.DateOfBirth = &dob
	}

	if err = s.db.Save(&person).Error; err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to update person")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(viewFor(&person))
}

// Delete removes a person. Persons with ban records on file cannot be removed;
// the records have to go first.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var banCount int64

	if err = s.db.Model(&models.Ban{}).Where("person_id = ?", id).Count(&banCount).Error; err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to count ban records")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if banCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "person has ban records on file"})
	}

	result := s.db.Delete(&models.Person{}, id)
	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("id", id).Msg("failed to delete person")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "person not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// BanStatus reports whether the person currently has any active ban.
func (s *Service) BanStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	status, err := s.engine.ActiveStatus(id)
	if err != nil {
		return handler.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"isBanned":    status.IsBanned,
		"activeCount": status.ActiveCount,
	})
}

func paramID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}
