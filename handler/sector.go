package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourism_marketplace/constants"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func (h *Handler) ListSectorsByAttraction(c *fiber.Ctx) error {
	onlyActive := c.Query("all") != "true"
	sectors, err := h.Sectors.ListByAttraction(c.Context(), inputID(c), onlyActive)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "sectors", sectors)
}

func (h *Handler) GetSector(c *fiber.Ctx) error {
	sector, err := h.Sectors.Get(c.Context(), inputID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "sector", sector)
}

func (h *Handler) CreateSector(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateSectorInput)
	sector, err := h.Sectors.Create(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "sector created", sector)
}

func (h *Handler) UpdateSector(c *fiber.Ctx) error {
	input := c.Locals("input").(model.UpdateSectorInput)
	sectorID := inputID(c)
	sector, err := h.Sectors.Update(c.Context(), sectorID, input, principalID(c))
	if err != nil {
		return fail(c, err)
	}
	// subscribers refetch the sector on any change
	h.Realtime.SectorChanged(c.Context(), sectorID, h.today().String())
	return utils.SuccessResponse(c, fiber.StatusOK, "sector updated", sector)
}

func (h *Handler) DeleteSector(c *fiber.Ctx) error {
	if err := h.Sectors.Delete(c.Context(), inputID(c)); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "sector deleted", nil)
}

func (h *Handler) SectorPriceHistory(c *fiber.Ctx) error {
	history, err := h.Sectors.PriceHistory(c.Context(), inputID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "price history", history)
}

// SectorCapacity answers ?date=YYYY-MM-DD, defaulting to today.
func (h *Handler) SectorCapacity(c *fiber.Ctx) error {
	day := h.today()
	if raw := c.Query("date"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		day = parsed
	}

	sectorID := inputID(c)
	if cached, ok := h.Realtime.CachedCapacity(c.Context(), sectorID, day.String()); ok {
		return utils.SuccessResponse(c, fiber.StatusOK, "capacity", cached)
	}

	capacity, err := h.Sectors.CheckCapacityAvailable(c.Context(), sectorID, day)
	if err != nil {
		return fail(c, err)
	}
	h.Realtime.CacheCapacity(c.Context(), capacity)
	return utils.SuccessResponse(c, fiber.StatusOK, "capacity", capacity)
}
