package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/quest-labs/instaquest/internal/models"
	"github.com/quest-labs/instaquest/internal/repository"
	"github.com/quest-labs/instaquest/internal/transfer"
	"github.com/quest-labs/instaquest/pkg/apierrors"
)

// AuthService runs the three-legged exchange and the refresh call,
// persisting results through the account and post repositories.
type AuthService interface {
	ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResponse, error)
	RefreshToken(ctx context.Context, accessToken string) (*transfer.RefreshResponse, error)
}

type authService struct {
	ig       InstagramService
	accounts repository.AccountRepository
	posts    repository.PostRepository
	now      func() time.Time
}

func NewAuthService(ig InstagramService, accounts repository.AccountRepository, posts repository.PostRepository) AuthService {
	return &authService{
		ig:       ig,
		accounts: accounts,
		posts:    posts,
		now:      time.Now,
	}
}

// ExchangeCode performs code -> short-lived token -> long-lived token,
// then fetches profile and recent media and upserts both. The exchange
// and profile legs are fatal; a media failure degrades to an empty post
// list and persistence failures are logged but never surfaced.
func (s *authService) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResponse, error) {
	if code == "" {
		return nil, apierrors.New(apierrors.KindExchange, 0, "authorization code required")
	}

	shortLived, err := s.ig.GetShortLivedToken(ctx, code)
	if err != nil {
		return nil, err
	}

	longLived, err := s.ig.GetLongLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(time.Duration(longLived.ExpiresIn) * time.Second)

	profile, err := s.ig.GetProfile(ctx, longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	media, err := s.ig.GetMedia(ctx, longLived.AccessToken, 0)
	if err != nil {
		// degraded mode: the login still succeeds without posts
		slog.Info("media fetch failed, continuing with empty list", "error", err)
		media = nil
	}

	s.persist(ctx, profile, media, longLived.AccessToken, expiresAt)

	if media == nil {
		// the response always carries an array, even when degraded
		media = []transfer.InstagramMedia{}
	}

	return &transfer.ExchangeResponse{
		Success: true,
		User:    *profile,
		Posts:   media,
		Token: transfer.InstagramToken{
			AccessToken: longLived.AccessToken,
			ExpiresAt:   expiresAt,
			UserID:      profile.ID,
		},
	}, nil
}

// RefreshToken extends a still-valid long-lived token. The matching
// account row, found by the old token value, gets the new token; a
// missing row only skips persistence.
func (s *authService) RefreshToken(ctx context.Context, accessToken string) (*transfer.RefreshResponse, error) {
	if accessToken == "" {
		return nil, apierrors.New(apierrors.KindRefresh, 0, "access token required")
	}

	refreshed, err := s.ig.RefreshAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(time.Duration(refreshed.ExpiresIn) * time.Second)

	acc, err := s.accounts.GetByAccessToken(ctx, accessToken)
	if err != nil {
		slog.Info("account lookup failed during refresh", "error", err)
	} else if acc == nil {
		slog.Info("no account row matches the refreshed token, skipping persistence")
	} else if err := s.accounts.UpdateToken(ctx, acc.InstagramID, refreshed.AccessToken, expiresAt); err != nil {
		slog.Info("token update failed", "instagram_id", acc.InstagramID, "error", err)
	}

	return &transfer.RefreshResponse{
		Success:     true,
		AccessToken: refreshed.AccessToken,
		ExpiresIn:   refreshed.ExpiresIn,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *authService) persist(ctx context.Context, profile *transfer.InstagramProfile, media []transfer.InstagramMedia, accessToken string, expiresAt time.Time) {
	acc := accountFromProfile(profile, accessToken, expiresAt)
	if err := s.accounts.Upsert(ctx, acc); err != nil {
		slog.Info("account upsert failed", "instagram_id", profile.ID, "error", err)
	}

	if len(media) == 0 {
		return
	}

	posts := make([]*models.InstagramPost, 0, len(media))
	for i := range media {
		posts = append(posts, postFromMedia(&media[i], profile.ID))
	}
	if err := s.posts.UpsertBatch(ctx, posts); err != nil {
		slog.Info("post upsert failed", "instagram_id", profile.ID, "error", err)
	}
}

func accountFromProfile(profile *transfer.InstagramProfile, accessToken string, expiresAt time.Time) *models.InstagramAccount {
	return &models.InstagramAccount{
		InstagramID:       profile.ID,
		Username:          profile.Username,
		Name:              profile.Name,
		AccountType:       profile.AccountType,
		MediaCount:        profile.MediaCount,
		FollowersCount:    profile.FollowersCount,
		FollowsCount:      profile.FollowsCount,
		ProfilePictureURL: profile.ProfilePictureURL,
		Biography:         optionalString(profile.Biography),
		Website:           optionalString(profile.Website),
		AccessToken:       accessToken,
		TokenExpiresAt:    expiresAt,
	}
}

func postFromMedia(m *transfer.InstagramMedia, userInstagramID string) *models.InstagramPost {
	return &models.InstagramPost{
		InstagramID:      m.ID,
		UserInstagramID:  userInstagramID,
		Caption:          m.Caption,
		MediaType:        m.MediaType,
		MediaURL:         m.MediaURL,
		ThumbnailURL:     m.ThumbnailURL,
		Timestamp:        parseMediaTimestamp(m.Timestamp),
		Permalink:        m.Permalink,
		LikeCount:        m.LikeCount,
		CommentsCount:    m.CommentsCount,
		IsCommentEnabled: m.IsCommentEnabled,
		MediaProductType: m.MediaProductType,
	}
}

// parseMediaTimestamp handles both RFC 3339 and the +0000 offset form
// the Graph API actually emits.
func parseMediaTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
