package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/middleware"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/marketplace"
)

type ProjectHandler struct {
	Market *marketplace.Service
}

func NewProjectHandler(m *marketplace.Service) *ProjectHandler {
	return &ProjectHandler{Market: m}
}

func (h *ProjectHandler) Routes(r fiber.Router, authMiddleware ...fiber.Handler) {
	client := chain(authMiddleware, middleware.RequireRoles(models.RoleClient))
	freelancer := chain(authMiddleware, middleware.RequireRoles(models.RoleFreelancer))

	r.Get("/projects", h.Browse)
	r.Get("/projects/:id", chain(authMiddleware, h.Get)...)

	r.Post("/client/projects", chain(client, h.Create)...)
	r.Get("/client/projects", chain(client, h.ListMine)...)
	r.Put("/client/projects/:id", chain(client, h.Update)...)
	r.Patch("/client/projects/:id/status", chain(client, h.UpdateStatus)...)
	r.Post("/client/projects/:id/close", chain(client, h.Close)...)
	r.Post("/client/projects/:id/reopen", chain(client, h.Reopen)...)
	r.Post("/client/projects/:id/complete", chain(client, h.Complete)...)
	r.Delete("/client/projects/:id", chain(client, h.Delete)...)

	r.Get("/freelancer/projects", chain(freelancer, h.ListHired)...)
}

// GET /api/projects?skill=go&limit=20&offset=0
func (h *ProjectHandler) Browse(c *fiber.Ctx) error {
	list, err := h.Market.BrowseOpenProjects(c.UserContext(), marketplace.BrowseQuery{
		Skill:  strings.TrimSpace(c.Query("skill")),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", list)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	project, err := h.Market.GetProject(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", project)
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	var req marketplace.ProjectInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	project, err := h.Market.CreateProject(c.UserContext(), p, req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Project created", project)
}

// GET /api/client/projects?sort=oldest
func (h *ProjectHandler) ListMine(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}

	newestFirst := c.Query("sort") != "oldest"
	list, err := h.Market.ListProjectsForClient(c.UserContext(), p.UserID, newestFirst)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", list)
}

func (h *ProjectHandler) ListHired(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}

	list, err := h.Market.ListProjectsForFreelancer(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", list)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req marketplace.ProjectInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	project, err := h.Market.UpdateProjectDetails(c.UserContext(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Project updated", project)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *ProjectHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if strings.TrimSpace(req.Status) == "" {
		errs := FieldErrors{}
		errs.Add("status", "This field is required")
		return validationFail(c, errs)
	}

	status := models.ProjectStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	project, err := h.Market.UpdateProjectStatus(c.UserContext(), p, id, status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Project status updated", project)
}

func (h *ProjectHandler) Close(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	project, err := h.Market.CloseProject(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Project closed", project)
}

func (h *ProjectHandler) Reopen(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	project, err := h.Market.ReopenProject(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Project reopened", project)
}

func (h *ProjectHandler) Complete(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req marketplace.CompleteInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := h.Market.CompleteProject(c.UserContext(), p, id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Project completed", res)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Market.DeleteProject(c.UserContext(), p, id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Project deleted", nil)
}
