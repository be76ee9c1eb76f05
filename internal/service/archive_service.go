package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"

	cfg "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/internal/repository"
)

// ArchiveService mirrors media files into R2. Instagram CDN URLs
// expire, so each stored post gets a durable copy keyed by its media id.
type ArchiveService struct {
	config     cfg.Config
	posts      repository.PostRepository
	httpClient *http.Client
}

func NewArchiveService(config cfg.Config, posts repository.PostRepository) *ArchiveService {
	return &ArchiveService{
		config:     config,
		posts:      posts,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (a *ArchiveService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(a.config.R2.AccessKey, a.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", a.config.R2.AccountID))
	}), nil
}

// ArchiveMedia downloads the media file, sniffs its content type and
// uploads it under media/<instagram id>. The post row is updated with
// the archive location.
func (a *ArchiveService) ArchiveMedia(ctx context.Context, postInstagramID, mediaURL string) error {
	if mediaURL == "" {
		return fmt.Errorf("no media URL for post %s", postInstagramID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("building media request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading media for post %s: %w", postInstagramID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading media for post %s", resp.StatusCode, postInstagramID)
	}

	file, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading media body: %w", err)
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(file); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}

	key := fmt.Sprintf("media/%s", postInstagramID)

	client, err := a.r2Client(ctx)
	if err != nil {
		return err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("uploading media for post %s: %w", postInstagramID, err)
	}

	archiveURL := fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s/%s", a.config.R2.AccountID, a.config.R2.BucketName, key)
	if err := a.posts.SetArchiveURL(ctx, postInstagramID, archiveURL); err != nil {
		return fmt.Errorf("recording archive location for post %s: %w", postInstagramID, err)
	}

	return nil
}
