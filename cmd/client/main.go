package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	config "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/internal/service"
	"github.com/quest-labs/instaquest/pkg/session"
)

const usage = `Usage: client <command>

Commands:
  status                 restore the stored session and show it
  login                  print the authorization URL to open
  callback <url>         complete login with the redirect URL
  refresh                force a token refresh
  disconnect             drop the stored session
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	apiBase := os.Getenv("INSTAQUEST_API")
	if apiBase == "" {
		apiBase = "http://localhost:3000"
	}

	store := tokenStore()
	api := session.NewClient(apiBase)

	// the client only issues public Graph reads, no credentials needed
	graph := service.NewInstagramService(config.Config{})

	orch := session.NewOrchestrator(store, api, graph)
	ctx := context.Background()

	switch os.Args[1] {
	case "status":
		if err := orch.Start(ctx); err != nil {
			log.Fatalf("Failed to restore session: %v", err)
		}
		printSession(orch)

	case "login":
		fmt.Printf("Open this URL in a browser:\n\n  %s/auth/instagram\n\n", apiBase)
		fmt.Println("Then run: client callback '<redirect url>'")

	case "callback":
		if len(os.Args) < 3 {
			log.Fatal("callback requires the redirect URL")
		}
		cleaned, err := orch.HandleCallback(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		fmt.Printf("Logged in as @%s\n", orch.User().Username)
		fmt.Printf("Continue at %s\n", cleaned)

	case "refresh":
		info, err := orch.Token()
		if err != nil || info == nil {
			log.Fatal("No stored session to refresh")
		}
		resp, err := api.Refresh(ctx, info.AccessToken)
		if err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
		if err != nil {
			expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		}
		if err := store.Set(&session.TokenInfo{
			AccessToken: resp.AccessToken,
			ExpiresAt:   expiresAt,
			UserID:      info.UserID,
		}); err != nil {
			log.Fatalf("Failed to persist refreshed token: %v", err)
		}
		fmt.Printf("Token refreshed, expires %s\n", expiresAt.Format(time.RFC1123))

	case "disconnect":
		if err := orch.Disconnect(); err != nil {
			log.Fatalf("Failed to disconnect: %v", err)
		}
		fmt.Println("Disconnected")

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// tokenStore prefers the OS keyring and falls back to a file under the
// user config dir.
func tokenStore() session.TokenStore {
	if os.Getenv("INSTAQUEST_NO_KEYRING") == "" {
		return session.NewKeyringStore()
	}

	path, err := session.DefaultStorePath()
	if err != nil {
		log.Fatalf("Cannot determine token store path: %v", err)
	}
	return session.NewFileStore(path)
}

func printSession(orch *session.Orchestrator) {
	switch orch.State() {
	case session.StateIdle:
		fmt.Println("No active session. Run: client login")
	case session.StateReady:
		user := orch.User()
		fmt.Printf("Connected as @%s (%s)\n", user.Username, user.AccountType)
		if user.FollowersCount != nil {
			fmt.Printf("Followers: %d\n", *user.FollowersCount)
		}
		fmt.Printf("Posts cached: %d\n", len(orch.Posts()))
		if info, err := orch.Token(); err == nil && info != nil {
			fmt.Printf("Token expires: %s\n", info.ExpiresAt.Format(time.RFC1123))
		}
	case session.StateError:
		fmt.Printf("Session error: %s\n", orch.Err())
	}
}
