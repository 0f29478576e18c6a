package httpapi

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/deliverynotes/internal/common"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/dmitrijs2005/deliverynotes/internal/server/auth"
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

const (
	validationPath = "/api/user/validation"
	personalPath   = "/api/user/register"
	companyPath    = "/api/user/company"
)

type TokenParser interface {
	Parse(token string) (*auth.Principal, error)
}

type route struct{ method, path string }

var openRoutes = map[route]struct{}{
	{fiber.MethodPost, "/api/user/register"}:             {},
	{fiber.MethodPost, "/api/user/login"}:                {},
	{fiber.MethodPost, "/api/user/recovery"}:             {},
	{fiber.MethodPost, "/api/user/recovery/newpassword"}: {},
	{fiber.MethodGet, "/api/user/summarize"}:             {},
	{fiber.MethodGet, "/health"}:                         {},
}

// requestLogger logs one line per request. Errors are rendered here so the
// logged status is the one the client receives.
func requestLogger(logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
		}
		if chainErr != nil {
			args = append(args, "error", chainErr)
		}

		ctx := c.UserContext()
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error(ctx, "request failed", args...)
		case status >= fiber.StatusBadRequest:
			logger.Warn(ctx, "request rejected", args...)
		default:
			logger.Info(ctx, "request processed", args...)
		}
		return nil
	}
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticator admits open routes and otherwise requires a valid bearer
// token whose principal is allowed on the requested path.
func authenticator(tokens TokenParser, logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := strings.TrimSuffix(c.Path(), "/")
		if _, ok := openRoutes[route{c.Method(), path}]; ok {
			return c.Next()
		}

		token := bearerToken(c.Get(common.AuthorizationHeaderName))
		if token == "" {
			return common.ErrMissingJWT
		}

		p, err := tokens.Parse(token)
		if err != nil {
			logger.Warn(c.UserContext(), "invalid token", "method", c.Method(), "path", path)
			return common.ErrInvalidJWT
		}

		if err := admit(p, path); err != nil {
			return err
		}

		c.Locals(principalKey, *p)
		return c.Next()
	}
}

func admit(p *auth.Principal, path string) error {
	if p.Status != models.StatusActive && p.Status != models.StatusToBeValidated {
		return common.ErrUserDisabled
	}

	validated := p.EmailStatus == 1
	if path == validationPath {
		if validated {
			return common.ErrEmailAlreadyValidated
		}
		return nil
	}
	if !validated {
		return common.ErrInvalidEmailValidation
	}

	switch {
	case p.Role == models.RoleCompany && path == personalPath:
		return common.ErrInvalidRouteCompany
	case p.Role == models.RolePersonalUser && path == companyPath:
		return common.ErrInvalidRouteUser
	}
	return nil
}

func principal(c *fiber.Ctx) auth.Principal {
	p, _ := c.Locals(principalKey).(auth.Principal)
	return p
}
