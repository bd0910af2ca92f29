package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/middleware"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/profile"
)

type ProfileHandler struct {
	Profiles *profile.Service
}

func NewProfileHandler(s *profile.Service) *ProfileHandler {
	return &ProfileHandler{Profiles: s}
}

func (h *ProfileHandler) Routes(r fiber.Router, authMiddleware ...fiber.Handler) {
	client := chain(authMiddleware, middleware.RequireRoles(models.RoleClient))
	freelancer := chain(authMiddleware, middleware.RequireRoles(models.RoleFreelancer))

	r.Get("/client/profile", chain(client, h.GetClient)...)
	r.Put("/client/profile", chain(client, h.UpdateClient)...)
	r.Get("/freelancer/profile", chain(freelancer, h.GetFreelancer)...)
	r.Put("/freelancer/profile", chain(freelancer, h.UpdateFreelancer)...)
	r.Get("/freelancers/:id", h.PublicFreelancer)
}

func (h *ProfileHandler) GetClient(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	prof, err := h.Profiles.GetClient(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", prof)
}

func (h *ProfileHandler) UpdateClient(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	var req profile.ClientInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	prof, err := h.Profiles.UpdateClient(c.UserContext(), p, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Profile updated", prof)
}

func (h *ProfileHandler) GetFreelancer(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	prof, err := h.Profiles.GetFreelancer(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", prof)
}

func (h *ProfileHandler) UpdateFreelancer(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	var req profile.FreelancerInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	prof, err := h.Profiles.UpdateFreelancer(c.UserContext(), p, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Profile updated", prof)
}

func (h *ProfileHandler) PublicFreelancer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	prof, err := h.Profiles.GetFreelancer(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", prof)
}
