package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/utils"
)

// EventsHandler streams change events and notifications to a signed-in user
// over a websocket.
type EventsHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
	Log       *zap.Logger
}

func NewEventsHandler(hub *realtime.Hub, secret string, log *zap.Logger) *EventsHandler {
	return &EventsHandler{Hub: hub, JWTSecret: secret, Log: log}
}

func (h *EventsHandler) Routes(app fiber.Router) {
	app.Use("/ws", h.Upgrade)
	app.Get("/ws/events", websocket.New(h.Stream))
}

// Upgrade authenticates the handshake from the "token" query param or the
// session cookie, since browsers cannot set headers on a websocket dial.
func (h *EventsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Query("token")
	if token == "" {
		token = c.Cookies(utils.CookieName)
	}
	if token == "" {
		return fiber.ErrUnauthorized
	}

	claims, err := utils.ParseJWT(h.JWTSecret, token)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	principal, err := claims.Principal()
	if err != nil {
		return fiber.ErrUnauthorized
	}

	c.Locals("principal", principal)
	return c.Next()
}

func (h *EventsHandler) Stream(c *websocket.Conn) {
	principal, ok := c.Locals("principal").(models.Principal)
	if !ok {
		c.Close()
		return
	}
	log := h.Log.With(zap.String("user_id", principal.UserID.String()))

	client := realtime.NewClient(principal.UserID)
	h.Hub.RegisterClient(client)
	log.Debug("websocket connected", zap.String("client_id", client.ID))
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Debug("websocket disconnected", zap.String("client_id", client.ID))
	}()

	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
		c.Close()
	}()

	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			return
		}
		if msgType, _ := payload["type"].(string); msgType == "pong" {
			continue
		}
	}
}
