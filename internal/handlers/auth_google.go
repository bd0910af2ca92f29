package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/account"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

// GoogleUserInfoURL is the OpenID userinfo endpoint for Google accounts.
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

const (
	stateCookie = "oauth_state"
	nextCookie  = "oauth_next"
	roleCookie  = "oauth_role"
)

// GoogleOAuthHandler signs users in with a Google account and mints the same
// session cookie as password login.
type GoogleOAuthHandler struct {
	Auth            *AuthHandler
	OAuth           *oauth2.Config
	UserInfoURL     string
	FrontendBaseURL string
	Log             *zap.Logger
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *GoogleOAuthHandler) Routes(r fiber.Router) {
	r.Get("/auth/google/start", h.GoogleStart)
	r.Get("/auth/google/callback", h.GoogleCallback)
}

func (h *GoogleOAuthHandler) tempCookie(c *fiber.Ctx, name, value string, maxAge int) {
	var expires time.Time
	if maxAge < 0 {
		expires = time.Now().Add(-time.Hour)
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.Auth.SecureCookie,
		SameSite: "Lax",
		MaxAge:   maxAge,
		Expires:  expires,
	})
}

// GoogleStart redirects to the consent screen. next is a frontend path to
// land on afterwards; role applies only when the account is new.
func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	role := strings.ToLower(strings.TrimSpace(c.Query("role")))
	switch models.Role(role) {
	case "", models.RoleClient, models.RoleFreelancer:
	default:
		return validationFail(c, FieldErrors{"role": {"Must be one of: client freelancer"}})
	}

	st, err := utils.RandomToken(24)
	if err != nil {
		return fail(c, apperr.Unavailable(err, "Could not start Google sign-in"))
	}
	h.tempCookie(c, stateCookie, st, 600)
	h.tempCookie(c, nextCookie, safeNext(c.Query("next")), 600)
	h.tempCookie(c, roleCookie, role, 600)

	return c.Redirect(h.OAuth.AuthCodeURL(st, oauth2.AccessTypeOnline), fiber.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	st := c.Query("state")
	if code == "" || st == "" || st != c.Cookies(stateCookie) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid sign-in state, please try again",
		})
	}
	next := safeNext(c.Cookies(nextCookie))
	role := models.Role(c.Cookies(roleCookie))

	h.tempCookie(c, stateCookie, "", -1)
	h.tempCookie(c, nextCookie, "", -1)
	h.tempCookie(c, roleCookie, "", -1)

	info, err := h.fetchUser(c.UserContext(), code)
	if err != nil {
		h.Log.Warn("google sign-in failed", zap.Error(err))
		return h.loginRedirect(c, "Google sign-in failed, please try again")
	}

	u, created, err := h.Auth.Accounts.SignInExternal(c.UserContext(), account.Identity{
		Provider: "Google",
		Email:    info.Email,
		Name:     info.Name,
		Verified: info.VerifiedEmail,
	}, role)
	if err != nil {
		if apperr.HTTPStatus(err) >= fiber.StatusInternalServerError {
			h.Log.Error("google sign-in", zap.Error(err))
		}
		return h.loginRedirect(c, apperr.Message(err))
	}
	if err := h.Auth.setSession(c, u); err != nil {
		return h.loginRedirect(c, "Could not create a session")
	}

	h.Log.Info("google sign-in", zap.String("user_id", u.ID.String()), zap.Bool("new_account", created))
	return c.Redirect(h.FrontendBaseURL+next, fiber.StatusTemporaryRedirect)
}

func (h *GoogleOAuthHandler) fetchUser(ctx context.Context, code string) (*googleUserInfo, error) {
	tok, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := h.OAuth.Client(ctx, tok).Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}

func (h *GoogleOAuthHandler) loginRedirect(c *fiber.Ctx, msg string) error {
	return c.Redirect(h.FrontendBaseURL+"/auth/login?err="+url.QueryEscape(msg), fiber.StatusTemporaryRedirect)
}

// safeNext keeps redirects on the frontend origin.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}
