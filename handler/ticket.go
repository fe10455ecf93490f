package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourism_marketplace/constants"
	"tourism_marketplace/middleware"
	"tourism_marketplace/model"
	"tourism_marketplace/service"
	"tourism_marketplace/utils"
)

// canSee lets staff through and restricts customers to their own records.
func canSee(c *fiber.Ctx, owner *uint) bool {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		return false
	}
	if principal.Role != constants.ROLE_CUSTOMER {
		return true
	}
	return owner != nil && *owner == principal.UserID
}

func errForeign(what string) error {
	return service.Forbidden("this %s belongs to another user", what)
}

// IssueTickets is the staff desk path: items and prices come from the
// request. Customers issue through IssueTransactionTickets.
func (h *Handler) IssueTickets(c *fiber.Ctx) error {
	input := c.Locals("input").(model.IssueTicketsInput)
	tickets, err := h.Tickets.IssueFromTransaction(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "tickets issued", tickets)
}

func (h *Handler) ListTickets(c *fiber.Ctx) error {
	filter := c.Locals("filter").(model.FilterTicketInput)
	page, err := h.Tickets.List(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "tickets", page)
}

func (h *Handler) MyTickets(c *fiber.Ctx) error {
	filter := c.Locals("filter").(model.FilterTicketInput)
	page, err := h.Tickets.ListByBuyer(c.Context(), *principalID(c), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "tickets", page)
}

func (h *Handler) ownTicket(c *fiber.Ctx) (*model.Ticket, error) {
	ticket, err := h.Tickets.Get(c.Context(), inputID(c))
	if err != nil {
		return nil, err
	}
	if !canSee(c, ticket.BuyerID) {
		return nil, errForeign("ticket")
	}
	return ticket, nil
}

func (h *Handler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.ownTicket(c)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "ticket", ticket)
}

func (h *Handler) TicketPayload(c *fiber.Ctx) error {
	ticket, err := h.ownTicket(c)
	if err != nil {
		return fail(c, err)
	}
	payload, err := h.Tickets.EncryptPayload(c.Context(), ticket.ID)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "ticket payload", fiber.Map{"payload": payload})
}

// TicketQR renders the signed payload as a PNG.
func (h *Handler) TicketQR(c *fiber.Ctx) error {
	ticket, err := h.ownTicket(c)
	if err != nil {
		return fail(c, err)
	}
	payload, err := h.Tickets.EncryptPayload(c.Context(), ticket.ID)
	if err != nil {
		return fail(c, err)
	}
	png, err := utils.GenerateQRCode(payload, utils.TicketQRSize)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

func (h *Handler) UseTicket(c *fiber.Ctx) error {
	ticket, err := h.Tickets.Use(c.Context(), inputID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "ticket used", ticket)
}

func (h *Handler) CancelTicket(c *fiber.Ctx) error {
	ticket, err := h.Tickets.Cancel(c.Context(), inputID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "ticket cancelled", ticket)
}

func (h *Handler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.Tickets.Delete(c.Context(), inputID(c)); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "ticket deleted", nil)
}

func (h *Handler) VerifyTicket(c *fiber.Ctx) error {
	input := c.Locals("input").(model.VerifyTicketInput)
	result, err := h.Tickets.VerifyEncryptedPayload(c.Context(), input.Payload)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
