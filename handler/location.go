package handler

import (
	"github.com/gofiber/fiber/v2"

	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

func (h *Handler) ListDepartments(c *fiber.Ctx) error {
	page, err := h.Catalog.ListDepartments(c.Context(), pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "departments", page)
}

func (h *Handler) GetDepartment(c *fiber.Ctx) error {
	department, err := h.Catalog.GetDepartment(c.Context(), inputID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "department", department)
}

func (h *Handler) CreateDepartment(c *fiber.Ctx) error {
	input := c.Locals("input").(model.DepartmentInput)
	department, err := h.Catalog.CreateDepartment(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "department created", department)
}

func (h *Handler) UpdateDepartment(c *fiber.Ctx) error {
	input := c.Locals("input").(model.DepartmentInput)
	department, err := h.Catalog.UpdateDepartment(c.Context(), inputID(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "department updated", department)
}

func (h *Handler) DeleteDepartment(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteDepartment(c.Context(), inputID(c)); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "department deleted", nil)
}

func (h *Handler) ListCities(c *fiber.Ctx) error {
	filter := c.Locals("filter").(model.FilterCity)
	page, err := h.Catalog.ListCities(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "cities", page)
}

func (h *Handler) ListCitiesByDepartment(c *fiber.Ctx) error {
	filter := model.FilterCity{Pagination: pagination(c), DepartmentID: inputID(c)}
	page, err := h.Catalog.ListCities(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "cities", page)
}

func (h *Handler) GetCity(c *fiber.Ctx) error {
	city, err := h.Catalog.GetCity(c.Context(), inputID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "city", city)
}

func (h *Handler) CreateCity(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CityInput)
	city, err := h.Catalog.CreateCity(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "city created", city)
}

func (h *Handler) UpdateCity(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CityInput)
	city, err := h.Catalog.UpdateCity(c.Context(), inputID(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "city updated", city)
}

func (h *Handler) DeleteCity(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteCity(c.Context(), inputID(c)); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "city deleted", nil)
}

func (h *Handler) ListCategories(c *fiber.Ctx) error {
	page, err := h.Catalog.ListCategories(c.Context(), pagination(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "categories", page)
}

func (h *Handler) GetCategory(c *fiber.Ctx) error {
	category, err := h.Catalog.GetCategory(c.Context(), inputID(c))
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "category", category)
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CategoryInput)
	category, err := h.Catalog.CreateCategory(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "category created", category)
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CategoryInput)
	category, err := h.Catalog.UpdateCategory(c.Context(), inputID(c), input)
	if err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "category updated", category)
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteCategory(c.Context(), inputID(c)); err != nil {
		return fail(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "category deleted", nil)
}
