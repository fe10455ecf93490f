package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tourism_marketplace/constants"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func (h *Handler) ListAttractions(c *fiber.Ctx) error {
	filter := c.Locals("filter").(model.FilterAttraction)
	page, err := h.Catalog.ListAttractions(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "attractions", page)
}

// GetAttraction accepts either the numeric id or the slug.
func (h *Handler) GetAttraction(c *fiber.Ctx) error {
	attraction, err := h.Catalog.GetAttraction(c.Context(), c.Params("idOrSlug"))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "attraction", attraction)
}

func (h *Handler) CreateAttraction(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CreateAttractionInput)
	attraction, err := h.Catalog.CreateAttraction(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "attraction created", attraction)
}

func (h *Handler) UpdateAttraction(c *fiber.Ctx) error {
	input := c.Locals("input").(model.UpdateAttractionInput)
	attraction, err := h.Catalog.UpdateAttraction(c.Context(), inputID(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "attraction updated", attraction)
}

func (h *Handler) DeleteAttraction(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteAttraction(c.Context(), inputID(c)); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "attraction deleted", nil)
}

// UploadAttractionImage stores the multipart "image" field and points the
// attraction at it.
func (h *Handler) UploadAttractionImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "image file is required", err)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
	}
	defer file.Close()

	if h.Images == nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, errors.New("no image store configured"))
	}
	current, err := h.Catalog.GetAttraction(c.Context(), strconv.FormatUint(uint64(inputID(c)), 10))
	if err != nil {
		return fail(c, err)
	}

	url, err := h.Images.Save(c.Context(), fileHeader.Filename, file)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "image upload failed", err)
	}

	attraction, err := h.Catalog.SetAttractionImage(c.Context(), inputID(c), url)
	if err != nil {
		return fail(c, err)
	}
	if current.ImageURL != nil && *current.ImageURL != url {
		if err := h.Images.Delete(c.Context(), *current.ImageURL); err != nil {
			logrus.WithError(err).WithField("url", *current.ImageURL).Warn("old attraction image not removed")
		}
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "image uploaded", attraction)
}

func (h *Handler) ListFavorites(c *fiber.Ctx) error {
	favorites, err := h.Favorites.ListByUser(c.Context(), *principalID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "favorites", favorites)
}

func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	input := c.Locals("input").(model.FavoriteInput)
	favorite, err := h.Favorites.Add(c.Context(), *principalID(c), input.AttractionID)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "favorite added", favorite)
}

func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	if err := h.Favorites.Remove(c.Context(), *principalID(c), inputID(c)); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "favorite removed", nil)
}
