package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/accolade/internal/auth"
	"github.com/roach88/accolade/internal/ir"
)

const callerLocal = "caller"

// requireCaller verifies the Bearer token and stores its subject as the caller.
func (s *Server) requireCaller() fiber.Handler {
	return func(c *fiber.Ctx) error {
		bearer := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if bearer == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		if len(bearer) < 7 || !strings.EqualFold(bearer[:7], "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "malformed authorization header")
		}

		identity, err := s.tokens.Verify(strings.TrimSpace(bearer[7:]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(callerLocal, identity)
		c.SetUserContext(auth.WithCaller(c.UserContext(), identity))
		return c.Next()
	}
}

// caller returns the authenticated identity set by requireCaller.
func caller(c *fiber.Ctx) ir.Identity {
	identity, _ := c.Locals(callerLocal).(ir.Identity)
	return identity
}
