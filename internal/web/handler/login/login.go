// Package login provides the login endpoint establishing a session.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bandesk/bandesk/internal/auth"
	"github.com/bandesk/bandesk/internal/config"
	"github.com/bandesk/bandesk/internal/web/handler"
	"github.com/bandesk/bandesk/internal/web/session"
)

const (
	// Path is the path to the login endpoint.
	Path = "/login"
)

// Service is the login handler service.
type Service struct {
	cfg         *config.Config
	authService *auth.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.authService = auth.NewService(db)

	app.Post(Path, s.Post)

	return nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Post handles the login request.
func (s *Service) Post(c *fiber.Ctx) error {
	in := new(credentials)

	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request"})
	}

	user, err := s.authService.Authenticate(in.Username, in.Password)
	if err != nil {
		// do not reveal whether the username or the password was wrong
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	userSession := &session.Data{User: *user}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	cookieSettings := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}
