package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quest-labs/instaquest/internal/models"
	"github.com/quest-labs/instaquest/internal/repository"
	"github.com/quest-labs/instaquest/internal/service"
	"github.com/quest-labs/instaquest/internal/transfer"
)

type fakeAccountRepo struct {
	expiring []*models.InstagramAccount
	listErr  error
}

func (r *fakeAccountRepo) Upsert(ctx context.Context, acc *models.InstagramAccount) error {
	return nil
}

func (r *fakeAccountRepo) GetByInstagramID(ctx context.Context, instagramID string) (*models.InstagramAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) GetByAccessToken(ctx context.Context, accessToken string) (*models.InstagramAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.InstagramAccount, error) {
	return r.expiring, r.listErr
}

func (r *fakeAccountRepo) UpdateToken(ctx context.Context, instagramID, accessToken string, expiresAt time.Time) error {
	return nil
}

var _ repository.AccountRepository = (*fakeAccountRepo)(nil)

type countingAuthService struct {
	mu         sync.Mutex
	refreshed  []string
	refreshErr error
}

var _ service.AuthService = (*countingAuthService)(nil)

func (s *countingAuthService) ExchangeCode(ctx context.Context, code string) (*transfer.ExchangeResponse, error) {
	panic("not expected")
}

func (s *countingAuthService) RefreshToken(ctx context.Context, accessToken string) (*transfer.RefreshResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshed = append(s.refreshed, accessToken)
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &transfer.RefreshResponse{Success: true, AccessToken: accessToken + "-new"}, nil
}

func TestRefreshTokensRefreshesExpiring(t *testing.T) {
	repo := &fakeAccountRepo{expiring: []*models.InstagramAccount{
		{InstagramID: "111", AccessToken: "LLT1"},
		{InstagramID: "222", AccessToken: "LLT2"},
		{InstagramID: "333", AccessToken: "LLT3"},
	}}
	auth := &countingAuthService{}

	NewTokenRefreshJob(repo, auth).RefreshTokens()

	assert.ElementsMatch(t, []string{"LLT1", "LLT2", "LLT3"}, auth.refreshed)
}

func TestRefreshTokensNoCandidates(t *testing.T) {
	auth := &countingAuthService{}

	NewTokenRefreshJob(&fakeAccountRepo{}, auth).RefreshTokens()

	assert.Empty(t, auth.refreshed)
}

func TestRefreshTokensListFailureIsLoggedOnly(t *testing.T) {
	repo := &fakeAccountRepo{listErr: errors.New("db down")}
	auth := &countingAuthService{}

	NewTokenRefreshJob(repo, auth).RefreshTokens()

	assert.Empty(t, auth.refreshed)
}

func TestRefreshTokensContinuesPastFailures(t *testing.T) {
	repo := &fakeAccountRepo{expiring: []*models.InstagramAccount{
		{InstagramID: "111", AccessToken: "LLT1"},
		{InstagramID: "222", AccessToken: "LLT2"},
	}}
	auth := &countingAuthService{refreshErr: errors.New("provider rejected token")}

	NewTokenRefreshJob(repo, auth).RefreshTokens()

	assert.Len(t, auth.refreshed, 2)
}
