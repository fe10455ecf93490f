package validate

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"tourism_marketplace/constants"
	"tourism_marketplace/model"
	"tourism_marketplace/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(nonNegativeSectorPrice, model.CreateSectorInput{})
	v.RegisterStructValidation(lineItemDate, model.LineItem{})
	return v
}

func nonNegativeSectorPrice(sl validator.StructLevel) {
	input := sl.Current().Interface().(model.CreateSectorInput)
	if input.Price.LessThan(decimal.Zero) {
		sl.ReportError(input.Price, "Price", "price", "gte", "0")
	}
}

func lineItemDate(sl validator.StructLevel) {
	item := sl.Current().Interface().(model.LineItem)
	if item.ValidFor.IsZero() {
		sl.ReportError(item.ValidFor, "ValidFor", "validFor", "required", "")
	}
}

// GetById parses the numeric route param key into c.Locals("inputId").
func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.ParseUint(params, 10, 64)
		if err != nil || valueKey == 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.DATA_INPUT_IS_NOT_NUMBER, errors.New("params invalid"))
		}

		c.Locals("inputId", uint(valueKey))
		return c.Next()
	}
}

// Body parses and validates the JSON body into c.Locals("input").
func Body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input T
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(input); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, describe(err), err)
		}
		c.Locals("input", input)
		return c.Next()
	}
}

// Query parses and validates the query string into c.Locals("filter").
func Query[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter T
		if err := c.QueryParser(&filter); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, constants.ERROR_INPUT, err)
		}
		if err := validate.Struct(filter); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, describe(err), err)
		}
		c.Locals("filter", filter)
		return c.Next()
	}
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return constants.ERROR_INPUT
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		part := fe.Field() + " failed on " + fe.Tag()
		if fe.Param() != "" {
			part += "=" + fe.Param()
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}
