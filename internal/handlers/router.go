package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/metrics"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/middleware"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/account"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/dashboard"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/marketplace"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/notify"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/services/profile"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Accounts  *account.Service
	Market    *marketplace.Service
	Dashboard *dashboard.Service
	Profiles  *profile.Service
	Inbox     *notify.Service
	Hub       *realtime.Hub

	JWTSecret     string
	JWTExpiresMin int
	SecureCookie  bool
	CORSOrigins   string
	Log           *zap.Logger

	// Google sign-in is mounted only when Google is set.
	Google            *oauth2.Config
	GoogleUserInfoURL string
	FrontendBaseURL   string
}

func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(d.Log),
	})

	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := []fiber.Handler{
		middleware.JWTFromCookie(d.JWTSecret),
		middleware.AttachJWTLocals(),
	}

	api := app.Group("/api")

	authH := &AuthHandler{
		Accounts:     d.Accounts,
		JWTSecret:    d.JWTSecret,
		Expires:      d.JWTExpiresMin,
		SecureCookie: d.SecureCookie,
	}
	authH.Routes(api, auth...)
	if d.Google != nil {
		(&GoogleOAuthHandler{
			Auth:            authH,
			OAuth:           d.Google,
			UserInfoURL:     d.GoogleUserInfoURL,
			FrontendBaseURL: strings.TrimRight(d.FrontendBaseURL, "/"),
			Log:             d.Log,
		}).Routes(api)
	}
	NewProjectHandler(d.Market).Routes(api, auth...)
	NewProposalHandler(d.Market).Routes(api, auth...)
	NewDashboardHandler(d.Dashboard).Routes(api, auth...)
	NewProfileHandler(d.Profiles).Routes(api, auth...)
	NewNotificationHandler(d.Inbox).Routes(api, auth...)

	NewEventsHandler(d.Hub, d.JWTSecret, d.Log).Routes(app)

	return app
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": msg,
		})
	}
}
