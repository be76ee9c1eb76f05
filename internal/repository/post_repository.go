package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/quest-labs/instaquest/internal/models"
)

type PostRepository interface {
	UpsertBatch(ctx context.Context, posts []*models.InstagramPost) error
	ListByUserInstagramID(ctx context.Context, userInstagramID string) ([]*models.InstagramPost, error)
	GetByInstagramID(ctx context.Context, instagramID string) (*models.InstagramPost, error)
	SetArchiveURL(ctx context.Context, instagramID, archiveURL string) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

// UpsertBatch writes posts row by row, keyed by instagram_id. A failed
// row is logged and skipped; earlier rows stay written. The batch makes
// no atomicity promise.
func (r *postRepository) UpsertBatch(ctx context.Context, posts []*models.InstagramPost) error {
	query := `
		INSERT INTO instagram_posts (
			instagram_id,
			user_instagram_id,
			caption,
			media_type,
			media_url,
			thumbnail_url,
			timestamp,
			permalink,
			like_count,
			comments_count,
			is_comment_enabled,
			media_product_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (instagram_id) DO UPDATE SET
			caption = EXCLUDED.caption,
			media_type = EXCLUDED.media_type,
			media_url = EXCLUDED.media_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			timestamp = EXCLUDED.timestamp,
			permalink = EXCLUDED.permalink,
			like_count = EXCLUDED.like_count,
			comments_count = EXCLUDED.comments_count,
			is_comment_enabled = EXCLUDED.is_comment_enabled,
			media_product_type = EXCLUDED.media_product_type
	`

	var lastErr error
	for _, post := range posts {
		_, err := r.db.ExecContext(ctx, query,
			post.InstagramID,
			post.UserInstagramID,
			post.Caption,
			post.MediaType,
			post.MediaURL,
			post.ThumbnailURL,
			post.Timestamp,
			post.Permalink,
			post.LikeCount,
			post.CommentsCount,
			post.IsCommentEnabled,
			post.MediaProductType,
		)
		if err != nil {
			slog.Info(err.Error(), "instagram_id", post.InstagramID)
			lastErr = err
		}
	}

	return lastErr
}

const postColumns = `
	id,
	instagram_id,
	user_instagram_id,
	caption,
	media_type,
	media_url,
	thumbnail_url,
	timestamp,
	permalink,
	like_count,
	comments_count,
	is_comment_enabled,
	media_product_type,
	archive_url,
	created_at`

func (r *postRepository) ListByUserInstagramID(ctx context.Context, userInstagramID string) ([]*models.InstagramPost, error) {
	query := `SELECT ` + postColumns + `
		FROM instagram_posts
		WHERE user_instagram_id = $1
		ORDER BY timestamp DESC`

	rows, err := r.db.QueryContext(ctx, query, userInstagramID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.InstagramPost
	for rows.Next() {
		var p models.InstagramPost
		if err := scanPost(rows, &p); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &p)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) GetByInstagramID(ctx context.Context, instagramID string) (*models.InstagramPost, error) {
	query := `SELECT ` + postColumns + ` FROM instagram_posts WHERE instagram_id = $1`

	var p models.InstagramPost
	err := scanPost(r.db.QueryRowContext(ctx, query, instagramID), &p)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}

func (r *postRepository) SetArchiveURL(ctx context.Context, instagramID, archiveURL string) error {
	query := `UPDATE instagram_posts SET archive_url = $2 WHERE instagram_id = $1`
	_, err := r.db.ExecContext(ctx, query, instagramID, archiveURL)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func scanPost(row rowScanner, p *models.InstagramPost) error {
	var archiveURL sql.NullString
	err := row.Scan(
		&p.ID,
		&p.InstagramID,
		&p.UserInstagramID,
		&p.Caption,
		&p.MediaType,
		&p.MediaURL,
		&p.ThumbnailURL,
		&p.Timestamp,
		&p.Permalink,
		&p.LikeCount,
		&p.CommentsCount,
		&p.IsCommentEnabled,
		&p.MediaProductType,
		&archiveURL,
		&p.CreatedAt,
	)
	if err != nil {
		return err
	}
	p.ArchiveURL = archiveURL.String
	return nil
}
