package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/middleware"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
)

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

// fail renders err with the status of its kind and its user-facing message.
func fail(c *fiber.Ctx, err error) error {
	body := fiber.Map{
		"success": false,
		"message": apperr.Message(err),
	}
	if fields := apperr.FieldErrors(err); len(fields) > 0 {
		body["errors"] = fields
	}
	return c.Status(apperr.HTTPStatus(err)).JSON(body)
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "invalid body",
	})
}

// getAuth returns the caller attached by middleware.AttachJWTLocals.
func getAuth(c *fiber.Ctx) (models.Principal, error) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return models.Principal{}, fiber.ErrUnauthorized
	}
	return p, nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid id", map[string][]string{name: {"Must be a valid id"}})
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// chain copies mw so routes never share a backing array.
func chain(mw []fiber.Handler, h ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+len(h))
	out = append(out, mw...)
	return append(out, h...)
}
