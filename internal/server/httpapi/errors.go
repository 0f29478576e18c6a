package httpapi

import (
	"errors"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/gofiber/fiber/v2"
)

const msgInternal = "internal error"

// statusOf maps err to a response code and the message shown to the caller.
// Business errors keep their own message; anything else is a 500.
func statusOf(err error) (int, string) {
	var be *common.Error
	if errors.As(err, &be) {
		return be.Status, be.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, msgInternal
}

func errorHandler(c *fiber.Ctx, err error) error {
	status, msg := statusOf(err)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
