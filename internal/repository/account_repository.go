package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/quest-labs/instaquest/internal/models"
)

type AccountRepository interface {
	Upsert(ctx context.Context, acc *models.InstagramAccount) error
	GetByInstagramID(ctx context.Context, instagramID string) (*models.InstagramAccount, error)
	GetByAccessToken(ctx context.Context, accessToken string) (*models.InstagramAccount, error)
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.InstagramAccount, error)
	UpdateToken(ctx context.Context, instagramID, accessToken string, expiresAt time.Time) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `
	instagram_id,
	username,
	name,
	account_type,
	media_count,
	followers_count,
	follows_count,
	profile_picture_url,
	biography,
	website,
	access_token,
	token_expires_at,
	created_at,
	updated_at`

// Upsert writes the full account row keyed by instagram_id. Repeated
// exchanges for the same account are last-write-wins: no merge, no
// versioning.
func (r *accountRepository) Upsert(ctx context.Context, acc *models.InstagramAccount) error {
	query := `
		INSERT INTO instagram_accounts (
			instagram_id,
			username,
			name,
			account_type,
			media_count,
			followers_count,
			follows_count,
			profile_picture_url,
			biography,
			website,
			access_token,
			token_expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (instagram_id) DO UPDATE SET
			username = EXCLUDED.username,
			name = EXCLUDED.name,
			account_type = EXCLUDED.account_type,
			media_count = EXCLUDED.media_count,
			followers_count = EXCLUDED.followers_count,
			follows_count = EXCLUDED.follows_count,
			profile_picture_url = EXCLUDED.profile_picture_url,
			biography = EXCLUDED.biography,
			website = EXCLUDED.website,
			access_token = EXCLUDED.access_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.ExecContext(ctx, query,
		acc.InstagramID,
		acc.Username,
		acc.Name,
		acc.AccountType,
		acc.MediaCount,
		acc.FollowersCount,
		acc.FollowsCount,
		acc.ProfilePictureURL,
		acc.Biography,
		acc.Website,
		acc.AccessToken,
		acc.TokenExpiresAt,
	)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *accountRepository) GetByInstagramID(ctx context.Context, instagramID string) (*models.InstagramAccount, error) {
	query := `SELECT id, ` + accountColumns + ` FROM instagram_accounts WHERE instagram_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, instagramID))
}

func (r *accountRepository) GetByAccessToken(ctx context.Context, accessToken string) (*models.InstagramAccount, error) {
	query := `SELECT id, ` + accountColumns + ` FROM instagram_accounts WHERE access_token = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, accessToken))
}

func (r *accountRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.InstagramAccount, error) {
	query := `SELECT id, ` + accountColumns + ` FROM instagram_accounts WHERE token_expires_at < $1`
	rows, err := r.db.QueryContext(ctx, query, deadline)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.InstagramAccount
	for rows.Next() {
		var acc models.InstagramAccount
		if err := scanAccount(rows, &acc); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &acc)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *accountRepository) UpdateToken(ctx context.Context, instagramID, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE instagram_accounts
		SET
			access_token = $2,
			token_expires_at = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE instagram_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, instagramID, accessToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner, acc *models.InstagramAccount) error {
	return row.Scan(
		&acc.ID,
		&acc.InstagramID,
		&acc.Username,
		&acc.Name,
		&acc.AccountType,
		&acc.MediaCount,
		&acc.FollowersCount,
		&acc.FollowsCount,
		&acc.ProfilePictureURL,
		&acc.Biography,
		&acc.Website,
		&acc.AccessToken,
		&acc.TokenExpiresAt,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
}

func (r *accountRepository) scanOne(row *sql.Row) (*models.InstagramAccount, error) {
	var acc models.InstagramAccount
	err := scanAccount(row, &acc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &acc, nil
}
