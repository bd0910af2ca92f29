package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/middleware"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/marketplace"
)

type ProposalHandler struct {
	Market *marketplace.Service
}

func NewProposalHandler(m *marketplace.Service) *ProposalHandler {
	return &ProposalHandler{Market: m}
}

func (h *ProposalHandler) Routes(r fiber.Router, authMiddleware ...fiber.Handler) {
	client := chain(authMiddleware, middleware.RequireRoles(models.RoleClient))
	freelancer := chain(authMiddleware, middleware.RequireRoles(models.RoleFreelancer))

	r.Post("/projects/:id/proposals", chain(freelancer, h.Submit)...)
	r.Get("/projects/:id/proposals", chain(authMiddleware, h.ListForProject)...)
	r.Get("/freelancer/proposals", chain(freelancer, h.ListMine)...)

	r.Get("/proposals/:id", chain(authMiddleware, h.Get)...)
	r.Post("/proposals/:id/accept", chain(client, h.Accept)...)
	r.Post("/proposals/:id/reject", chain(client, h.Reject)...)
	r.Post("/proposals/:id/withdraw", chain(freelancer, h.Withdraw)...)
	r.Patch("/proposals/:id/status", chain(authMiddleware, h.UpdateStatus)...)
	r.Delete("/proposals/:id", chain(authMiddleware, h.Delete)...)
}

func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req marketplace.ProposalInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	prop, err := h.Market.SubmitProposal(c.UserContext(), p, projectID, req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Proposal submitted", prop)
}

func (h *ProposalHandler) ListForProject(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	list, err := h.Market.ListProposalsForProject(c.UserContext(), p, projectID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", list)
}

func (h *ProposalHandler) ListMine(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}

	list, err := h.Market.ListProposalsForFreelancer(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", list)
}

func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	prop, err := h.Market.GetProposal(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", prop)
}

func (h *ProposalHandler) Accept(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	res, err := h.Market.AcceptProposal(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Proposal accepted", res)
}

func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	prop, err := h.Market.RejectProposal(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Proposal rejected", prop)
}

func (h *ProposalHandler) Withdraw(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	prop, err := h.Market.WithdrawProposal(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Proposal withdrawn", prop)
}

// PATCH /api/proposals/:id/status {"status": "accepted" | "rejected" | "withdrawn"}
func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
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

	status := models.ProposalStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	prop, err := h.Market.SetProposalStatus(c.UserContext(), p, id, status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Proposal status updated", prop)
}

func (h *ProposalHandler) Delete(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.Market.DeleteProposal(c.UserContext(), p, id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Proposal deleted", nil)
}
