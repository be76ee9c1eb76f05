package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/internal/models"
	"github.com/quest-labs/instaquest/internal/repository"
	"github.com/quest-labs/instaquest/internal/service"
)

type memoryEventRepo struct {
	events []*models.WebhookEvent
}

var _ repository.WebhookEventRepository = (*memoryEventRepo)(nil)

func (r *memoryEventRepo) Create(ctx context.Context, event *models.WebhookEvent) (int64, error) {
	r.events = append(r.events, event)
	return int64(len(r.events)), nil
}

func (r *memoryEventRepo) ListRecent(ctx context.Context, limit int) ([]*models.WebhookEvent, error) {
	return r.events, nil
}

func newWebhookApp(repo *memoryEventRepo) *fiber.App {
	cfg := config.Config{WebhookVerifyToken: "quest_instagram_webhook_0123456789abcdef"}
	handler := NewWebhookHandler(service.NewWebhookService(cfg, repo))

	app := fiber.New()
	app.Get("/webhook", handler.Verify)
	app.Post("/webhook", handler.Receive)
	app.Get("/api/webhook/events", handler.ListEvents)
	app.Post("/api/webhook/token", handler.NewToken)
	return app
}

func TestWebhookVerifyEchoesChallenge(t *testing.T) {
	app := newWebhookApp(&memoryEventRepo{})

	target := "/webhook?" + url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {"quest_instagram_webhook_0123456789abcdef"},
		"hub.challenge":    {"challenge-42"},
	}.Encode()

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "challenge-42", string(body))
}

func TestWebhookVerifyRejectsBadToken(t *testing.T) {
	app := newWebhookApp(&memoryEventRepo{})

	target := "/webhook?" + url.Values{
		"hub.mode":         {"subscribe"},
		"hub.verify_token": {"wrong"},
		"hub.challenge":    {"challenge-42"},
	}.Encode()

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestWebhookReceiveStoresEvent(t *testing.T) {
	repo := &memoryEventRepo{}
	app := newWebhookApp(repo)

	req := httptest.NewRequest("POST", "/webhook",
		stringsReader(`{"object":"instagram","entry":[{"id":"999"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "EVENT_RECEIVED", string(body))

	require.Len(t, repo.events, 1)
	assert.Equal(t, "instagram", repo.events[0].Object)
}

func TestWebhookNewToken(t *testing.T) {
	app := newWebhookApp(&memoryEventRepo{})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/webhook/token", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "quest_instagram_webhook_")
}
