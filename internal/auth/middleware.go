package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bandesk/bandesk/internal/roles"
	"github.com/bandesk/bandesk/internal/web/session"
)

// actorLocalsKey is the fiber locals key the middleware stores the Actor under.
const actorLocalsKey = "actor"

// RequireRole creates Fiber middleware that requires the session user to hold
// the given role or one above it. On success the caller's Actor is stored in
// the request locals for the handler.
func RequireRole(required roles.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies("session")
		if sessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		sessionData := new(session.Data)
		if err := sessionData.Read(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to read session")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		if sessionData.User.ID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		if !sessionData.User.Active {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "account disabled"})
		}

		if !roles.HasRoleOrAbove(sessionData.User.Role, required) {
			log.Warn().Uint64("user_id", sessionData.User.ID).
				Str("role", string(sessionData.User.Role)).
				Str("required", string(required)).
				Msg("user lacks required role")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permission"})
		}

		c.Locals(actorLocalsKey, ActorForUser(&sessionData.User))

		return c.Next()
	}
}

// CurrentActor returns the Actor stored by RequireRole. The boolean is false
// when the route was not guarded.
func CurrentActor(c *fiber.Ctx) (Actor, bool) {
	actor, ok := c.Locals(actorLocalsKey).(Actor)
	return actor, ok
}
