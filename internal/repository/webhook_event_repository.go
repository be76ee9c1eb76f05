package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/quest-labs/instaquest/internal/models"
)

type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.WebhookEvent) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]*models.WebhookEvent, error)
}

type webhookEventRepository struct {
	db *sql.DB
}

func NewWebhookEventRepository(db *sql.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) (int64, error) {
	query := `
		INSERT INTO instagram_webhook_events (event_type, object, entry)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, event.EventType, event.Object, event.Entry).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *webhookEventRepository) ListRecent(ctx context.Context, limit int) ([]*models.WebhookEvent, error) {
	query := `
		SELECT id, event_type, object, entry, received_at
		FROM instagram_webhook_events
		ORDER BY received_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var events []*models.WebhookEvent
	for rows.Next() {
		var ev models.WebhookEvent
		if err := rows.Scan(&ev.ID, &ev.EventType, &ev.Object, &ev.Entry, &ev.ReceivedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return events, nil
}
