package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWebhookToken(t *testing.T) {
	token, err := GenerateWebhookToken()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, WebhookTokenPrefix))
	assert.Len(t, token, len(WebhookTokenPrefix)+16)

	other, err := GenerateWebhookToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestMatchesWebhookToken(t *testing.T) {
	expected := "quest_instagram_webhook_0123456789abcdef"

	assert.True(t, MatchesWebhookToken(expected, expected))
	assert.True(t, MatchesWebhookToken(expected, "quest_instagram_webhook_freshsuffix00000"))
	assert.False(t, MatchesWebhookToken(expected, "some_other_token"))
	assert.False(t, MatchesWebhookToken(expected, ""))
}
