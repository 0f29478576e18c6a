package httpapi

import (
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	msgClientCreated   = "Client created successfully"
	msgClientsListed   = "Clients retrieved successfully"
	msgClientsArchived = "Archived clients retrieved successfully"
	msgClientFound     = "Client retrieved successfully"
	msgClientUpdated   = "Client updated successfully"
)

type clientRequest struct {
	Name    string         `json:"name"`
	CIF     string         `json:"cif"`
	Address models.Address `json:"address"`
}

func (r clientRequest) input() services.ClientInput {
	return services.ClientInput{Name: r.Name, CIF: r.CIF, Address: r.Address}
}

type clientResponse struct {
	Client  models.ClientData `json:"client"`
	Message string            `json:"message"`
}

type clientsResponse struct {
	Clients []models.ClientData `json:"clients"`
	Message string              `json:"message"`
}

func clientData(c *models.Client, _ int) models.ClientData { return c.PublicData() }

func (h *handlers) createClient(c *fiber.Ctx) error {
	var req clientRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	client, err := h.clients.Create(c.UserContext(), principal(c), req.input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(clientResponse{Client: client.PublicData(), Message: msgClientCreated})
}

func (h *handlers) listClients(c *fiber.Ctx) error {
	list, err := h.clients.List(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(clientsResponse{Clients: lo.Map(list, clientData), Message: msgClientsListed})
}

func (h *handlers) listArchivedClients(c *fiber.Ctx) error {
	list, err := h.clients.ListArchived(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(clientsResponse{Clients: lo.Map(list, clientData), Message: msgClientsArchived})
}

func (h *handlers) getClient(c *fiber.Ctx) error {
	id, err := pathID(c, "clientId")
	if err != nil {
		return err
	}

	client, err := h.clients.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(clientResponse{Client: client.PublicData(), Message: msgClientFound})
}

func (h *handlers) updateClient(c *fiber.Ctx) error {
	id, err := pathID(c, "clientId")
	if err != nil {
		return err
	}
	var req clientRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	client, err := h.clients.Update(c.UserContext(), principal(c), id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(clientResponse{Client: client.PublicData(), Message: msgClientUpdated})
}

func (h *handlers) deleteClient(c *fiber.Ctx) error {
	id, err := pathID(c, "clientId")
	if err != nil {
		return err
	}

	msg, err := h.clients.Delete(c.UserContext(), principal(c), id, softDelete(c))
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}

func (h *handlers) restoreClient(c *fiber.Ctx) error {
	id, err := pathID(c, "clientId")
	if err != nil {
		return err
	}

	msg, err := h.clients.Restore(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}
