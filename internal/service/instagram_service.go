package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	config "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/internal/transfer"
	"github.com/quest-labs/instaquest/pkg/apierrors"
)

const (
	defaultOAuthBaseURL     = "https://api.instagram.com"
	defaultGraphBaseURL     = "https://graph.instagram.com"
	defaultAuthorizeURL     = "https://www.instagram.com/oauth/authorize"
	defaultMediaLimit       = 25
	defaultHTTPTimeout      = 30 * time.Second
	profileFields           = "id,username,name,account_type,media_count,profile_picture_url,followers_count,follows_count,biography,website"
	mediaFields             = "id,caption,media_type,media_url,thumbnail_url,timestamp,permalink,like_count,comments_count,is_comment_enabled,media_product_type"
	instagramBusinessScopes = "instagram_business_basic,instagram_business_content_publish,instagram_business_manage_messages,instagram_business_manage_comments"
)

// InstagramService is the Graph API client: stateless calls against the
// provider's OAuth and Graph endpoints. Provider error payloads are
// normalized into pkg/apierrors here and nowhere else.
type InstagramService interface {
	AuthorizeURL(state string) string
	GetShortLivedToken(ctx context.Context, code string) (*transfer.ShortLivedToken, error)
	GetLongLivedToken(ctx context.Context, shortLivedToken string) (*transfer.LongLivedToken, error)
	RefreshAccessToken(ctx context.Context, accessToken string) (*transfer.LongLivedToken, error)
	GetProfile(ctx context.Context, accessToken string) (*transfer.InstagramProfile, error)
	GetMedia(ctx context.Context, accessToken string, limit int) ([]transfer.InstagramMedia, error)
	ValidateToken(ctx context.Context, accessToken string) bool
}

type instagramService struct {
	cfg          config.Config
	httpClient   *http.Client
	oauthBaseURL string
	graphBaseURL string
}

func NewInstagramService(cfg config.Config) InstagramService {
	return &instagramService{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		oauthBaseURL: defaultOAuthBaseURL,
		graphBaseURL: defaultGraphBaseURL,
	}
}

// NewInstagramServiceWithClient overrides the HTTP client and base URLs,
// for tests against a local fake Graph server.
func NewInstagramServiceWithClient(cfg config.Config, client *http.Client, oauthBaseURL, graphBaseURL string) InstagramService {
	return &instagramService{
		cfg:          cfg,
		httpClient:   client,
		oauthBaseURL: oauthBaseURL,
		graphBaseURL: graphBaseURL,
	}
}

func (ig *instagramService) AuthorizeURL(state string) string {
	// Instagram takes a comma-separated scope list, passed through
	// oauth2 as a single scope value.
	conf := oauth2.Config{
		ClientID:    ig.cfg.InstagramClientID,
		RedirectURL: ig.cfg.InstagramRedirectURI,
		Scopes:      []string{instagramBusinessScopes},
		Endpoint: oauth2.Endpoint{
			AuthURL: defaultAuthorizeURL,
		},
	}
	return conf.AuthCodeURL(state)
}

func (ig *instagramService) GetShortLivedToken(ctx context.Context, code string) (*transfer.ShortLivedToken, error) {
	data := url.Values{}
	data.Set("client_id", ig.cfg.InstagramClientID)
	data.Set("client_secret", ig.cfg.InstagramClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", ig.cfg.InstagramRedirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ig.oauthBaseURL+"/oauth/access_token",
		strings.NewReader(data.Encode()))
	if err != nil {
		return nil, apierrors.New(apierrors.KindExchange, 0, "building token request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result struct {
		AccessToken string          `json:"access_token"`
		UserID      json.RawMessage `json:"user_id"`
	}
	if err := ig.do(req, apierrors.KindExchange, &result); err != nil {
		return nil, err
	}

	return &transfer.ShortLivedToken{
		AccessToken: result.AccessToken,
		UserID:      parseUserID(result.UserID),
	}, nil
}

func (ig *instagramService) GetLongLivedToken(ctx context.Context, shortLivedToken string) (*transfer.LongLivedToken, error) {
	reqURL := fmt.Sprintf(
		"%s/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		ig.graphBaseURL,
		url.QueryEscape(ig.cfg.InstagramClientSecret),
		url.QueryEscape(shortLivedToken),
	)

	var result transfer.LongLivedToken
	if err := ig.get(ctx, reqURL, apierrors.KindExchange, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (ig *instagramService) RefreshAccessToken(ctx context.Context, accessToken string) (*transfer.LongLivedToken, error) {
	reqURL := fmt.Sprintf(
		"%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		ig.graphBaseURL,
		url.QueryEscape(accessToken),
	)

	var result transfer.LongLivedToken
	if err := ig.get(ctx, reqURL, apierrors.KindRefresh, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (ig *instagramService) GetProfile(ctx context.Context, accessToken string) (*transfer.InstagramProfile, error) {
	reqURL := fmt.Sprintf(
		"%s/me?fields=%s&access_token=%s",
		ig.graphBaseURL,
		profileFields,
		url.QueryEscape(accessToken),
	)

	var profile transfer.InstagramProfile
	if err := ig.get(ctx, reqURL, apierrors.KindProfileFetch, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (ig *instagramService) GetMedia(ctx context.Context, accessToken string, limit int) ([]transfer.InstagramMedia, error) {
	if limit <= 0 {
		limit = defaultMediaLimit
	}

	reqURL := fmt.Sprintf(
		"%s/me/media?fields=%s&access_token=%s&limit=%d",
		ig.graphBaseURL,
		mediaFields,
		url.QueryEscape(accessToken),
		limit,
	)

	var list transfer.InstagramMediaList
	if err := ig.get(ctx, reqURL, apierrors.KindMediaFetch, &list); err != nil {
		return nil, err
	}

	return list.Data, nil
}

// ValidateToken issues a lightweight /me call. Any provider error, not
// just an expiry, reads as an invalid token.
func (ig *instagramService) ValidateToken(ctx context.Context, accessToken string) bool {
	reqURL := fmt.Sprintf(
		"%s/me?fields=id&access_token=%s",
		ig.graphBaseURL,
		url.QueryEscape(accessToken),
	)

	var result struct {
		ID string `json:"id"`
	}
	if err := ig.get(ctx, reqURL, apierrors.KindValidation, &result); err != nil {
		slog.Info("token validation failed", "error", err)
		return false
	}

	return result.ID != ""
}

func (ig *instagramService) get(ctx context.Context, reqURL string, kind apierrors.Kind, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apierrors.New(kind, 0, "building request: %v", err)
	}
	return ig.do(req, kind, out)
}

// do runs the request and normalizes the response at the boundary: a
// transport failure, a non-2xx status, or an error envelope in the body
// all become an *apierrors.Error of the given kind.
func (ig *instagramService) do(req *http.Request, kind apierrors.Kind, out interface{}) error {
	resp, err := ig.httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return apierrors.New(kind, 0, "%v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return apierrors.New(kind, resp.StatusCode, "reading response: %v", err)
	}

	if graphErr := decodeGraphError(body); graphErr != "" {
		return apierrors.New(kind, resp.StatusCode, "%s", graphErr)
	}

	if resp.StatusCode != http.StatusOK {
		return apierrors.New(kind, resp.StatusCode, "unexpected status: %s", strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		slog.Info(err.Error())
		return apierrors.New(kind, resp.StatusCode, "decoding response: %v", err)
	}

	return nil
}

// decodeGraphError returns the provider-supplied message when the body
// carries an error envelope, in either the Graph or the flat OAuth
// shape, and "" otherwise.
func decodeGraphError(body []byte) string {
	var envelope struct {
		Error            json.RawMessage `json:"error"`
		ErrorMessage     string          `json:"error_message"`
		ErrorDescription string          `json:"error_description"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	// a literal null is the same as an absent error field
	if string(envelope.Error) == "null" {
		envelope.Error = nil
	}
	if len(envelope.Error) == 0 && envelope.ErrorMessage == "" && envelope.ErrorDescription == "" {
		return ""
	}

	var graphErr transfer.GraphError
	if err := json.Unmarshal(body, &graphErr); err == nil {
		if msg := graphErr.Message(); msg != "" {
			return msg
		}
	}

	// error may be a bare string rather than an object
	if len(envelope.Error) > 0 {
		var flat string
		if err := json.Unmarshal(envelope.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}

	return "provider returned an error"
}

// parseUserID tolerates both the numeric and the string encoding the
// provider has used for user_id across API versions.
func parseUserID(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			return parsed
		}
	}

	return 0
}
