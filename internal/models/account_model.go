package models

import "time"

type InstagramAccount struct {
	ID                int64     `db:"id" json:"-"`
	InstagramID       string    `db:"instagram_id" json:"instagram_id"`
	Username          string    `db:"username" json:"username"`
	Name              string    `db:"name" json:"name"`
	AccountType       string    `db:"account_type" json:"account_type"`
	MediaCount        *int64    `db:"media_count" json:"media_count,omitempty"`
	FollowersCount    *int64    `db:"followers_count" json:"followers_count,omitempty"`
	FollowsCount      *int64    `db:"follows_count" json:"follows_count,omitempty"`
	ProfilePictureURL string    `db:"profile_picture_url" json:"profile_picture_url"`
	Biography         *string   `db:"biography" json:"biography,omitempty"`
	Website           *string   `db:"website" json:"website,omitempty"`
	AccessToken       string    `db:"access_token" json:"-"`
	TokenExpiresAt    time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
