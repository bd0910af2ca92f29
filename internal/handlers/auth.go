package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/account"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

type AuthHandler struct {
	Accounts     *account.Service
	JWTSecret    string
	Expires      int
	SecureCookie bool
}

func (h *AuthHandler) Routes(r fiber.Router, authMiddleware ...fiber.Handler) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/me", chain(authMiddleware, h.Me)...)
}

func userJSON(u *models.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

func (h *AuthHandler) setSession(c *fiber.Ctx, u *models.User) error {
	token, err := utils.SignJWT(h.JWTSecret, u.ID, u.Role, h.Expires)
	if err != nil {
		return apperr.Unavailable(err, "Could not create a session")
	}

	c.Cookie(&fiber.Cookie{
		Name:     utils.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	return nil
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req account.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	u, err := h.Accounts.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	if err := h.setSession(c, u); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful",
		"data":    fiber.Map{"user": userJSON(u)},
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req account.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	u, err := h.Accounts.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	if err := h.setSession(c, u); err != nil {
		return fail(c, err)
	}

	return ok(c, "Login successful", fiber.Map{"user": userJSON(u)})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     utils.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := getAuth(c)
	if err != nil {
		return err
	}
	u, err := h.Accounts.Me(c.UserContext(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "", userJSON(u))
}
