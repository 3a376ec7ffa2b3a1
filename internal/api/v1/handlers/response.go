package handlers

import (
	"errors"
	"math"
	"reflect"
	"strconv"

	"todo-backend/internal/repository"
	"todo-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": true,
		"status":  status,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

// fieldError is a 400 carrying errors keyed by JSON field name.
func fieldError(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation error",
		"success": false,
		"status":  fiber.StatusBadRequest,
		"errors":  errs,
	})
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// fieldErrors flattens validator errors into field -> message.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		out["non_field_errors"] = err.Error()
		return out
	}
	for _, fe := range ves {
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if isNumber(fe.Kind()) {
			return "Ensure this value is greater than or equal to " + fe.Param() + "."
		}
		return "Ensure this field has at least " + fe.Param() + " characters."
	case "max":
		if isNumber(fe.Kind()) {
			return "Ensure this value is less than or equal to " + fe.Param() + "."
		}
		return "Ensure this field has no more than " + fe.Param() + " characters."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	case "hexcolor":
		return "Enter a valid hex color."
	case "excludesall":
		return "Contains characters that are not allowed."
	}
	return "Invalid value."
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// badBody answers a body that could not be decoded.
func badBody(c *fiber.Ctx, err error) error {
	logger.ContextLogger.Debug("Bad request body", zap.String("path", c.Path()), zap.Error(err))
	return fail(c, fiber.StatusBadRequest, "Bad request")
}

func currentUser(c *fiber.Ctx) (int, string) {
	userID, _ := c.Locals("userID").(int)
	role, _ := c.Locals("role").(string)
	return userID, role
}

// parseID accepts the ids a SERIAL column can hold: 1 up to MaxInt32.
func parseID(raw string) (int, bool) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int(id), true
}

// validID reports whether id fits a SERIAL column.
func validID(id int) bool {
	return id > 0 && id <= math.MaxInt32
}

// paramID parses the :id route parameter. Anything that cannot name a row is
// reported as not found.
func paramID(c *fiber.Ctx) (int, bool) {
	return parseID(c.Params("id"))
}

// storageError maps repository errors onto HTTP responses.
func storageError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Username already exists",
			"success": false,
			"status":  fiber.StatusConflict,
			"errors":  fiber.Map{"username": "A user with that username already exists."},
		})
	case errors.Is(err, repository.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Email already exists",
			"success": false,
			"status":  fiber.StatusConflict,
			"errors":  fiber.Map{"email": "A user with that email already exists."},
		})
	case errors.Is(err, repository.ErrDuplicate):
		return fail(c, fiber.StatusConflict, "Already exists")
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, repository.ErrInvalidReference):
		return fail(c, fiber.StatusBadRequest, "Invalid reference")
	}
	logger.ErrorLogger.Error("Error "+op, zap.Error(err))
	return fail(c, fiber.StatusInternalServerError, "Error "+op)
}

func forbidden(c *fiber.Ctx, what string, id int) error {
	userID, _ := currentUser(c)
	logger.SecurityLogger.Warn("Forbidden write",
		zap.String("entity", what),
		zap.Int("id", id),
		zap.Int("user_id", userID),
		zap.String("method", c.Method()),
	)
	return fail(c, fiber.StatusForbidden, "You do not have permission to perform this action")
}
