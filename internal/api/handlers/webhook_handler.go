package handlers

import (
	"log"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/quest-labs/instaquest/internal/service"
	"github.com/quest-labs/instaquest/pkg/utils"
)

type WebhookHandler struct {
	s service.WebhookService
}

func NewWebhookHandler(s service.WebhookService) *WebhookHandler {
	return &WebhookHandler{s: s}
}

// Verify answers the provider's GET subscription handshake: the literal
// challenge on a token match, 403 otherwise.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	echo, ok := h.s.VerifySubscription(mode, token, challenge)
	if !ok {
		log.Println("Webhook verification failed")
		return c.Status(fiber.StatusForbidden).SendString("Verification failed")
	}

	return c.Status(fiber.StatusOK).SendString(echo)
}

// Receive stores a delivered event. Storage hiccups are logged but the
// provider always gets a 200, so it does not re-deliver.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	if err := h.s.HandleEvent(c.Context(), c.Body()); err != nil {
		slog.Info("failed to store webhook event", "error", err)
	}

	return c.Status(fiber.StatusOK).SendString("EVENT_RECEIVED")
}

func (h *WebhookHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.s.ListEvents(c.Context(), c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch webhook events",
		})
	}

	return c.Status(fiber.StatusOK).JSON(events)
}

// NewToken mints a prefixed verify token for configuring a new
// subscription in the provider dashboard.
func (h *WebhookHandler) NewToken(c *fiber.Ctx) error {
	token, err := utils.GenerateWebhookToken()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate verify token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"verify_token": token,
	})
}
