package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/middleware"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/dashboard"
)

type DashboardHandler struct {
	Views *dashboard.Service
}

func NewDashboardHandler(v *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{Views: v}
}

func (h *DashboardHandler) Routes(r fiber.Router, authMiddleware ...fiber.Handler) {
	client := chain(authMiddleware, middleware.RequireRoles(models.RoleClient))
	freelancer := chain(authMiddleware, middleware.RequireRoles(models.RoleFreelancer))

	r.Get("/client/dashboard", chain(client, h.Client)...)
	r.Get("/client/history", chain(client, h.ClientHistory)...)
	r.Get("/freelancer/dashboard", chain(freelancer, h.Freelancer)...)
	r.Get("/freelancer/history", chain(freelancer, h.FreelancerHistory)...)
	r.Get("/freelancers/:id/reviews", h.Reviews)
}

func (h *DashboardHandler) Client(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	view, err := h.Views.ClientDashboard(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", view)
}

func (h *DashboardHandler) Freelancer(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	view, err := h.Views.FreelancerDashboard(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", view)
}

func (h *DashboardHandler) ClientHistory(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	rows, err := h.Views.ClientHistory(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", rows)
}

func (h *DashboardHandler) FreelancerHistory(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	rows, err := h.Views.FreelancerHistory(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", rows)
}

// GET /api/freelancers/:id/reviews?limit=10
func (h *DashboardHandler) Reviews(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	summary, err := h.Views.FreelancerReviews(c.UserContext(), id, queryInt(c, "limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", summary)
}
