package queue

import (
	"github.com/quest-labs/instaquest/internal/service"
)

type Queue struct {
	archive *service.ArchiveService
}

func NewQueue(archive *service.ArchiveService) *Queue {
	return &Queue{archive: archive}
}

const TaskTypeArchiveMedia = "archive:media"

type ArchiveMediaPayload struct {
	PostInstagramID string `json:"post_instagram_id"`
	MediaURL        string `json:"media_url"`
}
