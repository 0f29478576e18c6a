package httpapi

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/deliverynotes/internal/filex"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

// maxImageSize bounds profile images and signatures.
const maxImageSize = 2 << 20

const uploadField = "image"

// pathID reads a positive id from the named route parameter. A leading ':'
// left by clients that copy the route template is ignored.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := cast.ToInt64E(strings.TrimPrefix(c.Params(name), ":"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// softDelete is true unless the query says soft=false.
func softDelete(c *fiber.Ctx) bool {
	return c.Query("soft") != "false"
}

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// spool saves the multipart image to the upload directory. The caller
// removes it with discard once the use case returns.
func (h *handlers) spool(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "No file uploaded")
	}
	if fh.Size > maxImageSize {
		return "", fiber.NewError(fiber.StatusBadRequest, "File too large")
	}

	path := filex.SpoolPath(h.uploadDir, fh.Filename)
	if err := c.SaveFile(fh, path); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

func (h *handlers) discard(c *fiber.Ctx, path string) {
	if err := filex.Discard(path); err != nil {
		h.logger.Warn(c.UserContext(), "failed to remove upload", "path", path, "error", err)
	}
}
