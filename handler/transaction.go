package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourism_marketplace/constants"
	"tourism_marketplace/middleware"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func (h *Handler) CreatePendingTransaction(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreatePendingInput)
	trx, err := h.Transactions.CreatePending(c.Context(), input, principalID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "transaction recorded", trx)
}

func (h *Handler) InitiatePayment(c *fiber.Ctx) error {
	input := c.Locals("input").(model.PurchaseInput)
	result, err := h.Transactions.InitiatePayment(c.Context(), middleware.CurrentPrincipal(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "payment initiated", result)
}

func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	filter := c.Locals("filter").(model.FilterTransaction)
	page, err := h.Transactions.List(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "transactions", page)
}

func (h *Handler) MyTransactions(c *fiber.Ctx) error {
	filter := c.Locals("filter").(model.FilterTransaction)
	page, err := h.Transactions.ListByUser(c.Context(), *principalID(c), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "transactions", page)
}

func (h *Handler) GetTransaction(c *fiber.Ctx) error {
	trx, err := h.Transactions.FindByGatewayID(c.Context(), c.Params("gatewayId"))
	if err != nil {
		return fail(c, err)
	}
	if !canSee(c, trx.UserID) {
		return fail(c, errForeign("transaction"))
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "transaction", trx)
}

// ReconcileTransaction lets customers refresh only transactions already
// recorded under their account.
func (h *Handler) ReconcileTransaction(c *fiber.Ctx) error {
	if principal := middleware.CurrentPrincipal(c); principal.Role == constants.ROLE_CUSTOMER {
		known, err := h.Transactions.FindByGatewayID(c.Context(), c.Params("gatewayId"))
		if err != nil {
			return fail(c, err)
		}
		if !canSee(c, known.UserID) {
			return fail(c, errForeign("transaction"))
		}
	}

	trx, err := h.Transactions.Reconcile(c.Context(), c.Params("gatewayId"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "transaction reconciled", trx)
}

// IssueTransactionTickets issues the items stored when the payment was
// initiated. Repeated calls return the same tickets.
func (h *Handler) IssueTransactionTickets(c *fiber.Ctx) error {
	gatewayID := c.Params("gatewayId")
	trx, err := h.Transactions.FindByGatewayID(c.Context(), gatewayID)
	if err != nil {
		return fail(c, err)
	}
	if !canSee(c, trx.UserID) {
		return fail(c, errForeign("transaction"))
	}

	tickets, err := h.Tickets.IssueForTransaction(c.Context(), gatewayID)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "tickets issued", tickets)
}
