package httpapi

import (
	"github.com/dmitrijs2005/deliverynotes/internal/server/models"
	"github.com/dmitrijs2005/deliverynotes/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	msgProjectCreated   = "Project created successfully"
	msgProjectsListed   = "Projects retrieved successfully"
	msgProjectsArchived = "Archived projects retrieved successfully"
	msgProjectFound     = "Project retrieved successfully"
	msgProjectUpdated   = "Project updated successfully"
)

type projectRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Address  models.Address `json:"address"`
	ClientID int64          `json:"clientId"`
}

func (r projectRequest) input() services.ProjectInput {
	return services.ProjectInput{Name: r.Name, Email: r.Email, Address: r.Address, ClientID: r.ClientID}
}

type projectResponse struct {
	Project models.ProjectData `json:"project"`
	Message string             `json:"message"`
}

type projectsResponse struct {
	Projects []models.ProjectData `json:"projects"`
	Message  string               `json:"message"`
}

func projectData(p *models.Project, _ int) models.ProjectData { return p.PublicData() }

func (h *handlers) createProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	project, err := h.projects.Create(c.UserContext(), principal(c), req.input())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(projectResponse{Project: project.PublicData(), Message: msgProjectCreated})
}

func (h *handlers) listProjects(c *fiber.Ctx) error {
	list, err := h.projects.List(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(projectsResponse{Projects: lo.Map(list, projectData), Message: msgProjectsListed})
}

func (h *handlers) listArchivedProjects(c *fiber.Ctx) error {
	list, err := h.projects.ListArchived(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(projectsResponse{Projects: lo.Map(list, projectData), Message: msgProjectsArchived})
}

func (h *handlers) getProject(c *fiber.Ctx) error {
	id, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	project, err := h.projects.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(projectResponse{Project: project.PublicData(), Message: msgProjectFound})
}

func (h *handlers) updateProject(c *fiber.Ctx) error {
	id, err := pathID(c, "projectId")
	if err != nil {
		return err
	}
	var req projectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	project, err := h.projects.Update(c.UserContext(), principal(c), id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(projectResponse{Project: project.PublicData(), Message: msgProjectUpdated})
}

func (h *handlers) deleteProject(c *fiber.Ctx) error {
	id, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	msg, err := h.projects.Delete(c.UserContext(), principal(c), id, softDelete(c))
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}

func (h *handlers) restoreProject(c *fiber.Ctx) error {
	id, err := pathID(c, "projectId")
	if err != nil {
		return err
	}

	msg, err := h.projects.Restore(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(messageResponse{Message: msg})
}
