package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourism_marketplace/middleware"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func setTokenCookies(c *fiber.Ctx, tokens *model.TokenData) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	input := c.Locals("input").(model.RegisterInput)
	user, err := h.Users.Register(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "account created", user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	input := c.Locals("input").(model.LoginInput)
	tokens, user, err := h.Users.Login(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	setTokenCookies(c, tokens)
	return utils.SuccessResponse(c, fiber.StatusOK, "login success", fiber.Map{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"user":         user,
	})
}

// RefreshToken accepts the refresh token from the body or the cookie.
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	var input model.RefreshTokenInput
	_ = c.BodyParser(&input)
	if input.RefreshToken == "" {
		input.RefreshToken = c.Cookies("refresh_token")
	}

	tokens, err := h.Users.Refresh(c.Context(), input.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	setTokenCookies(c, tokens)
	return utils.SuccessResponse(c, fiber.StatusOK, "token refreshed", tokens)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(c)
	user, err := h.Users.Get(c.Context(), principal.UserID)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "current user", user)
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	filter := c.Locals("filter").(model.FilterUser)
	page, err := h.Users.List(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "users", page)
}

func (h *Handler) SetUserActive(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ActiveUserInput)
	user, err := h.Users.SetActive(c.Context(), inputID(c), *input.Active)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "user updated", user)
}
