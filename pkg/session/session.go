// Package session implements the client side of the token lifecycle:
// a small state machine that restores, validates, refreshes and
// exchanges Instagram sessions against the token service.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quest-labs/instaquest/internal/transfer"
)

type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateExchanging State = "exchanging"
	StateReady      State = "ready"
	StateError      State = "error"
)

// refreshThreshold is the remaining lifetime below which a token gets
// refreshed on startup.
const refreshThreshold = 7 * 24 * time.Hour

// Validator is the single Graph call the orchestrator makes directly: a
// lightweight token check, plus the direct-fetch fallback when the
// cache has no rows yet.
type Validator interface {
	ValidateToken(ctx context.Context, accessToken string) bool
	GetProfile(ctx context.Context, accessToken string) (*transfer.InstagramProfile, error)
	GetMedia(ctx context.Context, accessToken string, limit int) ([]transfer.InstagramMedia, error)
}

// Orchestrator drives a session through idle -> loading -> ready/error,
// with a transient exchanging state while a callback code is handled.
// It holds no ambient state: the token store and clients are injected.
type Orchestrator struct {
	store TokenStore
	api   *Client
	graph Validator
	now   func() time.Time

	state  State
	errMsg string
	user   *transfer.InstagramProfile
	posts  []transfer.InstagramMedia
}

func NewOrchestrator(store TokenStore, api *Client, graph Validator) *Orchestrator {
	return &Orchestrator{
		store: store,
		api:   api,
		graph: graph,
		now:   time.Now,
		state: StateIdle,
	}
}

func (o *Orchestrator) State() State                     { return o.state }
func (o *Orchestrator) Err() string                      { return o.errMsg }
func (o *Orchestrator) User() *transfer.InstagramProfile { return o.user }
func (o *Orchestrator) Posts() []transfer.InstagramMedia { return o.posts }

// Token returns the stored session token, if any.
func (o *Orchestrator) Token() (*TokenInfo, error) {
	return o.store.Get()
}

// Start restores a stored session: validate the token, refresh it when
// it expires within seven days, then load the account and posts from
// the service cache, falling back to direct Graph fetches.
func (o *Orchestrator) Start(ctx context.Context) error {
	info, err := o.store.Get()
	if err != nil {
		return fmt.Errorf("reading token store: %w", err)
	}
	if info == nil {
		o.state = StateIdle
		return nil
	}

	o.state = StateLoading

	if !o.graph.ValidateToken(ctx, info.AccessToken) {
		// an invalid token is the same as no session
		if err := o.store.Clear(); err != nil {
			slog.Info("failed to clear token store", "error", err)
		}
		o.reset()
		return nil
	}

	info = o.maybeRefresh(ctx, info)

	if err := o.load(ctx, info); err != nil {
		o.fail(err.Error())
		if err := o.store.Clear(); err != nil {
			slog.Info("failed to clear token store", "error", err)
		}
		return err
	}

	o.state = StateReady
	return nil
}

// HandleCallback processes the provider redirect. A code moves the
// session through exchanging into ready; an error parameter surfaces as
// the error state without touching the stored session. On success it
// returns the callback URL with the auth parameters stripped, ready to
// show or navigate to.
func (o *Orchestrator) HandleCallback(ctx context.Context, rawURL string) (string, error) {
	params, err := ParseCallback(rawURL)
	if err != nil {
		o.fail(err.Error())
		return "", err
	}

	if params.Code == "" {
		if params.Error != "" {
			o.fail(fmt.Sprintf("Instagram error: %s", params.Error))
			return "", fmt.Errorf("provider returned error: %s", params.Error)
		}
		err := fmt.Errorf("no authorization code received")
		o.fail(err.Error())
		return "", err
	}

	o.state = StateExchanging

	resp, err := o.api.Exchange(ctx, params.Code, params.State)
	if err != nil {
		// an existing stored session, if any, stays untouched
		o.fail(err.Error())
		return "", err
	}

	info := &TokenInfo{
		AccessToken: resp.Token.AccessToken,
		ExpiresAt:   resp.Token.ExpiresAt,
		UserID:      resp.Token.UserID,
	}
	if err := o.store.Set(info); err != nil {
		slog.Info("failed to persist token", "error", err)
	}

	o.user = &resp.User
	o.posts = resp.Posts
	o.errMsg = ""
	o.state = StateReady

	return StripAuthParams(rawURL), nil
}

// Disconnect drops the stored token and clears the in-memory session.
func (o *Orchestrator) Disconnect() error {
	err := o.store.Clear()
	o.reset()
	return err
}

// maybeRefresh refreshes the token when it expires within the
// threshold. A failed refresh keeps the old token; the next startup
// tries again.
func (o *Orchestrator) maybeRefresh(ctx context.Context, info *TokenInfo) *TokenInfo {
	if info.ExpiresAt.Sub(o.now()) >= refreshThreshold {
		return info
	}

	resp, err := o.api.Refresh(ctx, info.AccessToken)
	if err != nil {
		slog.Info("token refresh failed, keeping current token", "error", err)
		return info
	}

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		expiresAt = o.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	updated := &TokenInfo{
		AccessToken: resp.AccessToken,
		ExpiresAt:   expiresAt,
		UserID:      info.UserID,
	}
	if err := o.store.Set(updated); err != nil {
		slog.Info("failed to persist refreshed token", "error", err)
	}

	return updated
}

func (o *Orchestrator) load(ctx context.Context, info *TokenInfo) error {
	user, err := o.api.CachedAccount(ctx, info.UserID)
	if err != nil {
		slog.Info("cache read failed, falling back to Graph", "error", err)
	}

	if user != nil {
		posts, err := o.api.CachedPosts(ctx, info.UserID)
		if err != nil {
			slog.Info("cached posts read failed", "error", err)
			posts = nil
		}
		o.user = user
		o.posts = posts
		return nil
	}

	// cache miss: fetch directly from the provider
	profile, err := o.graph.GetProfile(ctx, info.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	media, err := o.graph.GetMedia(ctx, info.AccessToken, 0)
	if err != nil {
		slog.Info("direct media fetch failed", "error", err)
		media = nil
	}

	o.user = profile
	o.posts = media
	return nil
}

func (o *Orchestrator) fail(msg string) {
	o.state = StateError
	o.errMsg = msg
}

func (o *Orchestrator) reset() {
	o.state = StateIdle
	o.errMsg = ""
	o.user = nil
	o.posts = nil
}
