package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tourism_marketplace/constants"
	"tourism_marketplace/helper"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func bearer(c *fiber.Ctx) string {
	token := c.Cookies("access_token")
	if token == "" {
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return token
}

// Protected rejects requests without a valid access token and stores the
// caller in c.Locals("principal").
func Protected(tokens *helper.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearer(c)
		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MISSING_TOKEN, errors.New("no token"))
		}

		principal, err := tokens.ParseAccessToken(token)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.INVALID_TOKEN, err)
		}

		c.Locals("principal", principal)
		return c.Next()
	}
}

// RequireRoles must run after Protected.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := CurrentPrincipal(c)
		if principal == nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.MISSING_TOKEN, errors.New("no principal"))
		}
		if !utils.IsValidValueOfConstant(principal.Role, roles) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.NOT_PERMISSION, errors.New("role "+principal.Role+" not allowed"))
		}
		return c.Next()
	}
}

// CurrentPrincipal returns nil for guests.
func CurrentPrincipal(c *fiber.Ctx) *model.Principal {
	principal, _ := c.Locals("principal").(*model.Principal)
	return principal
}
