package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/pkg/apierrors"
)

func testConfig() config.Config {
	return config.Config{
		InstagramClientID:     "client-id",
		InstagramClientSecret: "client-secret",
		InstagramRedirectURI:  "https://app.example.com/auth/instagram/callback",
	}
}

func newFakeGraph(t *testing.T, handler http.HandlerFunc) (InstagramService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ig := NewInstagramServiceWithClient(testConfig(), server.Client(), server.URL, server.URL)
	return ig, server
}

func TestAuthorizeURL(t *testing.T) {
	ig := NewInstagramService(testConfig())

	raw := ig.AuthorizeURL("state-token")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "www.instagram.com", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/auth/instagram/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-token", q.Get("state"))
	assert.Equal(t, instagramBusinessScopes, q.Get("scope"))
}

func TestGetShortLivedToken(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/oauth/access_token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "abc123", r.Form.Get("code"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "client-secret", r.Form.Get("client_secret"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "SLT1",
			"user_id":      999,
		})
	})

	token, err := ig.GetShortLivedToken(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "SLT1", token.AccessToken)
	assert.Equal(t, int64(999), token.UserID)
}

func TestGetShortLivedTokenStringUserID(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "SLT1",
			"user_id":      "999",
		})
	})

	token, err := ig.GetShortLivedToken(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(999), token.UserID)
}

func TestGetShortLivedTokenProviderError(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error_type":        "OAuthException",
			"error_message":     "Invalid authorization code",
			"error_description": "",
		})
	})

	_, err := ig.GetShortLivedToken(context.Background(), "bad-code")
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindExchange))
	assert.Contains(t, err.Error(), "Invalid authorization code")
}

func TestGetLongLivedToken(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/access_token", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "ig_exchange_token", q.Get("grant_type"))
		assert.Equal(t, "SLT1", q.Get("access_token"))
		assert.Equal(t, "client-secret", q.Get("client_secret"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "LLT1",
			"token_type":   "bearer",
			"expires_in":   5184000,
		})
	})

	token, err := ig.GetLongLivedToken(context.Background(), "SLT1")
	require.NoError(t, err)
	assert.Equal(t, "LLT1", token.AccessToken)
	assert.Equal(t, int64(5184000), token.ExpiresIn)
}

func TestRefreshAccessTokenProviderError(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Session has expired",
				"type":    "OAuthException",
				"code":    190,
			},
		})
	})

	_, err := ig.RefreshAccessToken(context.Background(), "stale-token")
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindRefresh))
	assert.Contains(t, err.Error(), "Session has expired")
}

func TestGetProfile(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, profileFields, r.URL.Query().Get("fields"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":              "999",
			"username":        "alice",
			"account_type":    "BUSINESS",
			"media_count":     42,
			"followers_count": 1200,
		})
	})

	profile, err := ig.GetProfile(context.Background(), "LLT1")
	require.NoError(t, err)
	assert.Equal(t, "999", profile.ID)
	assert.Equal(t, "alice", profile.Username)
	require.NotNil(t, profile.MediaCount)
	assert.Equal(t, int64(42), *profile.MediaCount)
}

func TestGetProfileWithNullErrorField(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"999","username":"alice","error":null}`))
	})

	profile, err := ig.GetProfile(context.Background(), "LLT1")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}

func TestGetProfileError(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Invalid OAuth access token",
				"code":    190,
			},
		})
	})

	_, err := ig.GetProfile(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, apierrors.IsKind(err, apierrors.KindProfileFetch))
}

func TestGetMedia(t *testing.T) {
	ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/media", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, mediaFields, r.URL.Query().Get("fields"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"id":         "m1",
					"media_type": "IMAGE",
					"timestamp":  "2026-08-01T10:00:00+0000",
					"like_count": 7,
				},
			},
		})
	})

	media, err := ig.GetMedia(context.Background(), "LLT1", 0)
	require.NoError(t, err)
	require.Len(t, media, 1)
	assert.Equal(t, "m1", media[0].ID)
	assert.Equal(t, int64(7), media[0].LikeCount)
}

func TestValidateToken(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"id": "999"})
		})
		assert.True(t, ig.ValidateToken(context.Background(), "LLT1"))
	})

	t.Run("provider error", func(t *testing.T) {
		ig, _ := newFakeGraph(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "Invalid token", "code": 190},
			})
		})
		assert.False(t, ig.ValidateToken(context.Background(), "bad"))
	})
}

func TestDecodeGraphError(t *testing.T) {
	assert.Equal(t, "", decodeGraphError([]byte(`{"access_token":"x"}`)))
	assert.Equal(t, "", decodeGraphError([]byte(`{"access_token":"x","error":null}`)))
	assert.Equal(t, "boom", decodeGraphError([]byte(`{"error":{"message":"boom"}}`)))
	assert.Equal(t, "flat failure", decodeGraphError([]byte(`{"error":"flat failure"}`)))
	assert.Equal(t, "described", decodeGraphError([]byte(`{"error_message":"x","error_description":"described"}`)))
}
