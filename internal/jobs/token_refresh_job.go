package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quest-labs/instaquest/internal/models"
	"github.com/quest-labs/instaquest/internal/repository"
	"github.com/quest-labs/instaquest/internal/service"
)

// refreshWindow matches the client-side policy: tokens within 7 days of
// expiry get refreshed.
const refreshWindow = 7 * 24 * time.Hour

type TokenRefreshJob struct {
	accounts repository.AccountRepository
	auth     service.AuthService
}

func NewTokenRefreshJob(accounts repository.AccountRepository, auth service.AuthService) *TokenRefreshJob {
	return &TokenRefreshJob{
		accounts: accounts,
		auth:     auth,
	}
}

// RefreshTokens refreshes every stored token expiring inside the
// window. Accounts whose token already lapsed are picked up too; the
// provider rejects those and the failure is only logged.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	deadline := time.Now().Add(refreshWindow)

	accounts, err := c.accounts.ListExpiringBefore(ctx, deadline)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.InstagramAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := c.auth.RefreshToken(ctx, acc.AccessToken); err != nil {
				slog.Info("Unable to refresh token", "instagram_id", acc.InstagramID, "error", err)
			}
		}(acc)
	}

	wg.Wait()
}
