package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/stuimpact/stuimpactweb2/api/http/presenter"
)

// ErrorHandler renders errors that escape handlers in the {error} shape.
// Internal failures are not echoed to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return presenter.Error(c, fe.Code, fe.Message)
	}
	return presenter.Error(c, fiber.StatusInternalServerError, "internal server error")
}
