// Package places provides the JSON handlers for the venue registry.
package places

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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
	// Path is the base path for the venue registry.
	Path = handler.RootPath + "places"
)

// Service provides the place endpoints.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
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
	s.validator = validator.New()

	app.Get(Path, auth.RequireRole(roles.RoleStaff), s.List)
	app.Post(Path, auth.RequireRole(roles.RoleHeadManager), s.Create)
	app.Get(Path+"/:id", auth.RequireRole(roles.RoleStaff), s.Get)
	app.Put(Path+"/:id", auth.RequireRole(roles.RoleHeadManager), s.Update)
	app.Delete(Path+"/:id", auth.RequireRole(roles.RoleAdmin), s.Delete)
}

type placeRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
}

type placeView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func viewFor(p *models.Place) placeView {
	return placeView{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// List returns all venues.
func (s *Service) List(c *fiber.Ctx) error {
	var places []models.Place

	if err := s.db.Order("name").Find(&places).Error; err != nil {
		log.Error().Err(err).Msg("failed to list places")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	views := make([]placeView, 0, len(places))
	for i := range places {
		views = append(views, viewFor(&places[i]))
	}

	return c.JSON(views)
}

// Get returns one venue.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var place models.Place

	err = s.db.First(&place, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "place not found"})
	}

	if err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to load place")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(viewFor(&place))
}

// Create adds a venue. Names are unique.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(placeRequest)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	place := models.Place{
		Name:    strings.TrimSpace(in.Name),
		Address: in.Address,
		Active:  true,
	}

	if in.Active != nil {
		place.Active = *in.Active
	}

	if err := s.db.Create(&place).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "place name already exists"})
		}

		log.Error().Err(err).Msg("failed to create place")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusCreated).JSON(viewFor(&place))
}

// Update edits a venue.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	in := new(placeRequest)
	if err = c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err = s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var place models.Place

	err = s.db.First(&place, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "place not found"})
	}

	if err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to load place")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	place.Name = strings.TrimSpace(in.Name)
	place.Address = in.Address

	if in.Active != nil {
		place.Active = *in.Active
	}

	if err = s.db.Save(&place).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "place name already exists"})
		}

		log.Error().Err(err).Uint64("id", id).Msg("failed to update place")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(viewFor(&place))
}

// Delete removes a venue. Venues referenced by ban approvals cannot be
// removed; deactivate them instead.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	var approvalCount int64

	if err = s.db.Model(&models.PlaceApproval{}).Where("place_id = ?", id).Count(&approvalCount).Error; err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to count place approvals")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if approvalCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "place is referenced by ban records"})
	}

	result := s.db.Delete(&models.Place{}, id)
	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("id", id).Msg("failed to delete place")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "place not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func paramID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}
