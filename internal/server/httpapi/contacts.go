package httpapi

import (
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/deliverynotes/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type validationRequest struct {
	Code string `json:"email_code"`
}

type companyRequest struct {
	Name    string  `json:"name"`
	CIF     string  `json:"cif"`
	Address *string `json:"address"`
}

type personalRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	NIF     string `json:"nif"`
}

type recoveryRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	Email        string `json:"email"`
	RecoveryCode string `json:"recoveryCode"`
	Password     string `json:"password"`
}

type authResponse struct {
	JWT     string             `json:"jwt"`
	User    models.ContactView `json:"user,omitempty"`
	Contact models.ContactView `json:"contact,omitempty"`
	Message string             `json:"message,omitempty"`
}

func userResponse(r *services.AuthResult) authResponse {
	return authResponse{JWT: r.Token, User: r.User, Message: r.Message}
}

func (h *handlers) registerContact(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.contacts.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{JWT: res.Token, Contact: res.User, Message: res.Message})
}

func (h *handlers) validateEmail(c *fiber.Ctx) error {
	var req validationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.contacts.ValidateEmail(c.UserContext(), principal(c), req.Code)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(res))
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.contacts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(res))
}

func (h *handlers) onboardCompany(c *fiber.Ctx) error {
	var req companyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.contacts.OnboardCompany(c.UserContext(), principal(c),
		contacts.CompanyProfile{Name: req.Name, CIF: req.CIF, Address: req.Address})
	if err != nil {
		return err
	}
	return c.JSON(userResponse(res))
}

func (h *handlers) onboardPersonal(c *fiber.Ctx) error {
	var req personalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.contacts.OnboardPersonal(c.UserContext(), principal(c),
		contacts.PersonalProfile{Name: req.Name, Surname: req.Surname, NIF: req.NIF})
	if err != nil {
		return err
	}
	return c.JSON(userResponse(res))
}

func (h *handlers) uploadLogo(c *fiber.Ctx) error {
	path, err := h.spool(c)
	if err != nil {
		return err
	}
	defer h.discard(c, path)

	res, err := h.contacts.UploadProfileImage(c.UserContext(), principal(c), path)
	if err != nil {
		return err
	}
	return c.JSON(userResponse(res))
}

func (h *handlers) getContact(c *fiber.Ctx) error {
	res, err := h.contacts.Get(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(userResponse(res))
}

func (h *handlers) deleteContact(c *fiber.Ctx) error {
	msg, err := h.contacts.Delete(c.UserContext(), principal(c), softDelete(c))
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}

func (h *handlers) recoverPassword(c *fiber.Ctx) error {
	var req recoveryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.contacts.RecoverPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}

func (h *handlers) resetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.contacts.ResetPassword(c.UserContext(), req.Email, req.RecoveryCode, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}

func (h *handlers) summarize(c *fiber.Ctx) error {
	summary, err := h.contacts.Summarize(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
