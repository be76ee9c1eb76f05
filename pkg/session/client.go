package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quest-labs/instaquest/internal/models"
	"github.com/quest-labs/instaquest/internal/transfer"
)

// Client talks to the token exchange service and its cache endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Exchange(ctx context.Context, code, state string) (*transfer.ExchangeResponse, error) {
	var resp transfer.ExchangeResponse
	err := c.post(ctx, "/auth/instagram/exchange", transfer.ExchangeRequest{Code: code, State: state}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Refresh(ctx context.Context, accessToken string) (*transfer.RefreshResponse, error) {
	var resp transfer.RefreshResponse
	err := c.post(ctx, "/auth/instagram/refresh", transfer.RefreshRequest{AccessToken: accessToken}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CachedAccount reads the persisted account row, mapped back to the
// profile shape. A missing row returns (nil, nil).
func (c *Client) CachedAccount(ctx context.Context, instagramID string) (*transfer.InstagramProfile, error) {
	var acc models.InstagramAccount
	found, err := c.get(ctx, "/api/accounts/"+instagramID, &acc)
	if err != nil || !found {
		return nil, err
	}

	profile := &transfer.InstagramProfile{
		ID:                acc.InstagramID,
		Username:          acc.Username,
		Name:              acc.Name,
		AccountType:       acc.AccountType,
		MediaCount:        acc.MediaCount,
		FollowersCount:    acc.FollowersCount,
		FollowsCount:      acc.FollowsCount,
		ProfilePictureURL: acc.ProfilePictureURL,
	}
	if acc.Biography != nil {
		profile.Biography = *acc.Biography
	}
	if acc.Website != nil {
		profile.Website = *acc.Website
	}

	return profile, nil
}

func (c *Client) CachedPosts(ctx context.Context, instagramID string) ([]transfer.InstagramMedia, error) {
	var posts []models.InstagramPost
	found, err := c.get(ctx, "/api/accounts/"+instagramID+"/posts", &posts)
	if err != nil || !found {
		return nil, err
	}

	media := make([]transfer.InstagramMedia, 0, len(posts))
	for _, p := range posts {
		media = append(media, transfer.InstagramMedia{
			ID:               p.InstagramID,
			Caption:          p.Caption,
			MediaType:        p.MediaType,
			MediaURL:         p.MediaURL,
			ThumbnailURL:     p.ThumbnailURL,
			Timestamp:        p.Timestamp.Format(time.RFC3339),
			Permalink:        p.Permalink,
			LikeCount:        p.LikeCount,
			CommentsCount:    p.CommentsCount,
			IsCommentEnabled: p.IsCommentEnabled,
			MediaProductType: p.MediaProductType,
		})
	}

	return media, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", serverMessage(respBody, resp.StatusCode))
	}

	return json.Unmarshal(respBody, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s", serverMessage(respBody, resp.StatusCode))
	}

	return true, json.Unmarshal(respBody, out)
}

// serverMessage pulls the message or error field out of a failed
// response body, falling back to the status code.
func serverMessage(body []byte, statusCode int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("request failed with status %d", statusCode)
}
