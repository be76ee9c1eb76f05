package service

import (
	"context"
	"encoding/json"
	"log/slog"

	config "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/internal/models"
	"github.com/quest-labs/instaquest/internal/repository"
	"github.com/quest-labs/instaquest/pkg/utils"
)

// WebhookService verifies provider subscriptions and persists delivered
// events as raw rows.
type WebhookService interface {
	VerifySubscription(mode, verifyToken, challenge string) (string, bool)
	HandleEvent(ctx context.Context, body []byte) error
	ListEvents(ctx context.Context, limit int) ([]*models.WebhookEvent, error)
}

type webhookService struct {
	cfg    config.Config
	events repository.WebhookEventRepository
}

func NewWebhookService(cfg config.Config, events repository.WebhookEventRepository) WebhookService {
	return &webhookService{cfg: cfg, events: events}
}

// VerifySubscription echoes the challenge only for a subscribe request
// whose verify token is the configured one or carries the accepted
// prefix. Setup flows mint a fresh suffix per subscription, so an exact
// match cannot be required.
func (s *webhookService) VerifySubscription(mode, verifyToken, challenge string) (string, bool) {
	if mode != "subscribe" {
		return "", false
	}
	if !utils.MatchesWebhookToken(s.cfg.WebhookVerifyToken, verifyToken) {
		return "", false
	}
	return challenge, true
}

// HandleEvent stores the delivered payload as a raw event row. A body
// that does not parse is still recorded, with object "unknown".
func (s *webhookService) HandleEvent(ctx context.Context, body []byte) error {
	var payload struct {
		Object string          `json:"object"`
		Entry  json.RawMessage `json:"entry"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Info("unparseable webhook body", "error", err)
	}

	object := payload.Object
	if object == "" {
		object = "unknown"
	}
	entry := payload.Entry
	if len(entry) == 0 {
		entry = json.RawMessage("[]")
	}

	event := &models.WebhookEvent{
		EventType: object,
		Object:    object,
		Entry:     entry,
	}

	if _, err := s.events.Create(ctx, event); err != nil {
		return err
	}

	return nil
}

func (s *webhookService) ListEvents(ctx context.Context, limit int) ([]*models.WebhookEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.events.ListRecent(ctx, limit)
}
