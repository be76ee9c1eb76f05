package models

import (
	"encoding/json"
	"time"
)

type WebhookEvent struct {
	ID         int64           `db:"id" json:"id"`
	EventType  string          `db:"event_type" json:"event_type"`
	Object     string          `db:"object" json:"object"`
	Entry      json.RawMessage `db:"entry" json:"entry"`
	ReceivedAt time.Time       `db:"received_at" json:"received_at"`
}
