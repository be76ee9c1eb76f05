package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	config "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/internal/queue"
	"github.com/quest-labs/instaquest/internal/service"
	"github.com/quest-labs/instaquest/internal/transfer"
	"github.com/quest-labs/instaquest/pkg/apierrors"
	"github.com/quest-labs/instaquest/pkg/utils"
)

type AuthHandler struct {
	auth   service.AuthService
	ig     service.InstagramService
	client *asynq.Client
	cfg    config.Config
}

// NewAuthHandler wires the exchange/refresh endpoints. client may be
// nil when no task queue is configured; media archiving is skipped then.
func NewAuthHandler(cfg config.Config, auth service.AuthService, ig service.InstagramService, client *asynq.Client) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		ig:     ig,
		client: client,
		cfg:    cfg,
	}
}

// Login redirects the browser to the provider's authorize endpoint with
// a signed state parameter.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	state, err := utils.GenerateState(h.cfg.SecretKey, c.Query("return_url"), 15*time.Minute)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to start authorization",
		})
	}

	return c.Redirect(h.ig.AuthorizeURL(state))
}

func (h *AuthHandler) Exchange(c *fiber.Ctx) error {
	var req transfer.ExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Authorization code required",
		})
	}

	if req.State != "" {
		if _, err := utils.ValidateState(h.cfg.SecretKey, req.State); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid state parameter",
			})
		}
	}

	resp, err := h.auth.ExchangeCode(c.Context(), req.Code)
	if err != nil {
		return providerError(c, err, "Authentication failed")
	}

	h.enqueueArchives(resp.Posts)

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req transfer.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.AccessToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Access token required",
		})
	}

	resp, err := h.auth.RefreshToken(c.Context(), req.AccessToken)
	if err != nil {
		return providerError(c, err, "Token refresh failed")
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) enqueueArchives(posts []transfer.InstagramMedia) {
	if h.client == nil || !h.cfg.ArchiveEnabled() {
		return
	}

	for _, post := range posts {
		if post.MediaURL == "" {
			continue
		}
		payload := queue.ArchiveMediaPayload{
			PostInstagramID: post.ID,
			MediaURL:        post.MediaURL,
		}
		if err := queue.EnqueueArchiveMedia(h.client, payload); err != nil {
			slog.Info("failed to enqueue archive task", "post", post.ID, "error", err)
		}
	}
}

// providerError maps a normalized provider rejection to 400 with the
// provider-supplied message. Transport failures (no provider status)
// and unclassified errors are a 500.
func providerError(c *fiber.Ctx, err error, summary string) error {
	var apiErr *apierrors.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   summary,
			"message": apiErr.Message,
		})
	}

	slog.Info(err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   summary,
		"message": err.Error(),
	})
}
