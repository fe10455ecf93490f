package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourism_marketplace/constants"
	"tourism_marketplace/utils"
)

// reportRange reads ?from and ?to, defaulting to the last seven days.
func (h *Handler) reportRange(c *fiber.Ctx) (utils.CustomDate, utils.CustomDate, *uint, error) {
	to := h.today()
	from := utils.CustomDate{Time: to.AddDate(0, 0, -7)}

	if raw := c.Query("from"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			return from, to, nil, err
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			return from, to, nil, err
		}
		to = parsed
	}

	var attractionID *uint
	if id := c.QueryInt("attractionId"); id > 0 {
		attractionID = utils.Ptr(uint(id))
	}
	return from, to, attractionID, nil
}

func (h *Handler) AttendanceReport(c *fiber.Ctx) error {
	from, to, attractionID, err := h.reportRange(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	report, err := utils.GetAttendanceReport(h.Reports, from, to, attractionID)
	if err != nil {
		return fail(c, err)
	}

	noShow := 0
	for _, r := range report {
		noShow += r.NoShowTickets
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "attendance report", fiber.Map{
		"report": report,
		"summary": fiber.Map{
			"averageNoShowRate":  utils.CalculateAverage(report),
			"totalNoShowTickets": noShow,
			"totalLoss":          utils.CalculateTotalLoss(report),
		},
	})
}

func (h *Handler) SalesReport(c *fiber.Ctx) error {
	from, to, attractionID, err := h.reportRange(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}

	rows, summary, err := utils.GetSalesReport(h.Reports, from, to, attractionID)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "sales report", fiber.Map{
		"from":    from.String(),
		"to":      to.String(),
		"items":   rows,
		"summary": summary,
	})
}

