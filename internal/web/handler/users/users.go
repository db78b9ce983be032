// Package users provides the JSON handlers for operator account management
// and self-service password changes.
package users

import (
	"errors"
	"strconv"
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
	// Path is the base path for account management.
	Path = handler.RootPath + "users"

	// PasswordPath is the self-service password change endpoint.
	PasswordPath = handler.RootPath + "password"
)

// Service provides the user endpoints.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Account management is admin only; the password
// change endpoint is open to every authenticated user.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = auth.NewService(db)
	s.validator = validator.New()

	app.Get(Path, auth.RequireRole(roles.RoleAdmin), s.List)
	app.Post(Path, auth.RequireRole(roles.RoleAdmin), s.Create)
	app.Put(Path+"/:id", auth.RequireRole(roles.RoleAdmin), s.Update)

	app.Post(PasswordPath, auth.RequireRole(roles.RoleStaff), s.ChangePassword)
}

type createUserRequest struct {
	Username        string  `json:"username" validate:"required,min=3"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=12"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Role            string  `json:"role" validate:"required"`
	AssignedPlaceID *uint64 `json:"assignedPlaceId"`
}

type updateUserRequest struct {
	Email           *string `json:"email" validate:"omitempty,email"`
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Role            *string `json:"role"`
	AssignedPlaceID *uint64 `json:"assignedPlaceId"`
	ClearPlace      bool    `json:"clearAssignedPlace"`
	Active          *bool   `json:"active"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=12"`
}

type userView struct {
	ID              uint64    `json:"id"`
	Active          bool      `json:"active"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName,omitempty"`
	LastName        string    `json:"lastName,omitempty"`
	Role            string    `json:"role"`
	AssignedPlaceID *uint64   `json:"assignedPlaceId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func viewFor(u *models.User) userView {
	return userView{
		ID:              u.ID,
		Active:          u.Active,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            string(u.Role),
		AssignedPlaceID: u.AssignedPlaceID,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// List returns all operator accounts.
func (s *Service) List(c *fiber.Ctx) error {
	var users []models.User

	if err := s.db.Order("username").Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("failed to list users")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, viewFor(&users[i]))
	}

	return c.JSON(views)
}

// Create adds an operator account.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(createUserRequest)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	role := roles.Role(in.Role)
	if !roles.Valid(role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown role"})
	}

	user, err := s.authService.CreateUser(
		in.Username, in.Email, in.Password, in.FirstName, in.LastName,
		role, in.AssignedPlaceID,
	)

	if errors.Is(err, auth.ErrUserNameOrEmailExists) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusCreated).JSON(viewFor(user))
}

// Update edits an operator account. The password is not editable here; each
// user changes their own through the password endpoint.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}

	in := new(updateUserRequest)
	if err = c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err = s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User

	err = s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}

	if err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to load user")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if in.Role != nil {
		role := roles.Role(*in.Role)
		if !roles.Valid(role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown role"})
		}

		user.Role = role
	}

	if in.Email != nil {
		user.Email = *in.Email
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}

	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if in.AssignedPlaceID != nil {
		user.AssignedPlaceID = in.AssignedPlaceID
	}

	if in.ClearPlace {
		user.AssignedPlaceID = nil
	}

	if in.Active != nil {
		user.Active = *in.Active
	}

	if err = s.db.Save(&user).Error; err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to update user")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(viewFor(&user))
}

// ChangePassword changes the password of the calling user.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	actor, ok := auth.CurrentActor(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	in := new(changePasswordRequest)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err := s.authService.ChangePassword(actor.UserID, in.OldPassword, in.NewPassword)

	if errors.Is(err, auth.ErrInvalidOldPassword) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	}

	if err != nil {
		log.Error().Err(err).Uint64("id", actor.UserID).Msg("failed to change password")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
