package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// WebhookTokenPrefix marks verify tokens minted by this app. The
// webhook receiver accepts any token carrying it, since setup flows
// mint a fresh suffix per subscription.
const WebhookTokenPrefix = "quest_instagram_webhook_"

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateWebhookToken mints a prefixed verify token for a new webhook
// subscription.
func GenerateWebhookToken() (string, error) {
	suffix, err := gonanoid.Generate(tokenAlphabet, 16)
	if err != nil {
		return "", err
	}
	return WebhookTokenPrefix + suffix, nil
}

// MatchesWebhookToken reports whether a presented verify token is
// acceptable: either the exact configured token or one minted with the
// shared prefix.
func MatchesWebhookToken(expected, presented string) bool {
	if presented == "" {
		return false
	}
	return presented == expected || strings.HasPrefix(presented, WebhookTokenPrefix)
}
