package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tourism_marketplace/constants"
	"tourism_marketplace/helper"
	"tourism_marketplace/middleware"
	"tourism_marketplace/model"
	"tourism_marketplace/service"
	"tourism_marketplace/utils"
)

// Handler holds the services every route delegates to.
type Handler struct {
	Catalog      *service.CatalogService
	Sectors      *service.SectorService
	Transactions *service.TransactionService
	Tickets      *service.TicketService
	Favorites    *service.FavoriteService
	Users        *service.UserService
	Images       helper.ImageStore
	Realtime     *helper.Realtime
	Reports      *gorm.DB
	DeepLink     string
	Location     *time.Location
}

var statusByKind = map[service.ErrorKind]int{
	service.KindNotFound:     fiber.StatusNotFound,
	service.KindBadRequest:   fiber.StatusBadRequest,
	service.KindConflict:     fiber.StatusConflict,
	service.KindUnauthorized: fiber.StatusUnauthorized,
	service.KindForbidden:    fiber.StatusForbidden,
	service.KindUnavailable:  fiber.StatusBadGateway,
}

// fail writes the error envelope for a service error.
func fail(c *fiber.Ctx, err error) error {
	status, ok := statusByKind[service.KindOf(err)]
	if !ok {
		logrus.WithError(err).WithField("path", c.Path()).Error("request failed")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	message := err.Error()
	var appErr *service.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	return utils.ErrorResponse(c, status, message, err)
}

func inputID(c *fiber.Ctx) uint {
	id, _ := c.Locals("inputId").(uint)
	return id
}

func principalID(c *fiber.Ctx) *uint {
	if p := middleware.CurrentPrincipal(c); p != nil {
		return &p.UserID
	}
	return nil
}

func pagination(c *fiber.Ctx) model.Pagination {
	var p model.Pagination
	_ = c.QueryParser(&p)
	return p
}

func (h *Handler) today() utils.CustomDate {
	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	return utils.DateOf(time.Now(), loc)
}
