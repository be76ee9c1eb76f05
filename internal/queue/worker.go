package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleArchiveMediaTask(ctx context.Context, task *asynq.Task) error {
	var payload ArchiveMediaPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if err := q.archive.ArchiveMedia(ctx, payload.PostInstagramID, payload.MediaURL); err != nil {
		log.Printf("Error archiving media for post %s: %v", payload.PostInstagramID, err)
		return err
	}

	return nil
}
