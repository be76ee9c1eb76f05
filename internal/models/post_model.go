package models

import "time"

type InstagramPost struct {
	ID               int64     `db:"id" json:"-"`
	InstagramID      string    `db:"instagram_id" json:"instagram_id"`
	UserInstagramID  string    `db:"user_instagram_id" json:"user_instagram_id"`
	Caption          string    `db:"caption" json:"caption"`
	MediaType        string    `db:"media_type" json:"media_type"`
	MediaURL         string    `db:"media_url" json:"media_url"`
	ThumbnailURL     string    `db:"thumbnail_url" json:"thumbnail_url"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
	Permalink        string    `db:"permalink" json:"permalink"`
	LikeCount        int64     `db:"like_count" json:"like_count"`
	CommentsCount    int64     `db:"comments_count" json:"comments_count"`
	IsCommentEnabled bool      `db:"is_comment_enabled" json:"is_comment_enabled"`
	MediaProductType string    `db:"media_product_type" json:"media_product_type"`
	ArchiveURL       string    `db:"archive_url" json:"archive_url,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
