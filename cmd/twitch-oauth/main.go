// twitch-oauth is a local helper that walks the Twitch authorization code
// flow (with PKCE) for the bot and streamer accounts and stores the
// resulting tokens in the bot's credential store.
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"steelbot/internal/domain"
	"steelbot/internal/infrastructure/persistence/sqlite"
)

const (
	twitchAuthorizeURL = "https://id.twitch.tv/oauth2/authorize"
	twitchTokenURL     = "https://id.twitch.tv/oauth2/token"
)

var (
	lastCodeVerifier string
	lastOAuthRole    string
)

func generateCodeVerifier() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func generateCodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func handleStartOAuth(role string, scopes []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verifier, err := generateCodeVerifier()
		if err != nil {
			http.Error(w, "could not generate code_verifier", http.StatusInternalServerError)
			return
		}

		lastCodeVerifier = verifier
		lastOAuthRole = role
		challenge := generateCodeChallenge(verifier)

		q := url.Values{}
		q.Set("client_id", os.Getenv("TWITCH_CLIENT_ID"))
		q.Set("redirect_uri", os.Getenv("TWITCH_REDIRECT_URI"))
		q.Set("response_type", "code")
		q.Set("scope", strings.Join(scopes, " "))
		q.Set("state", role)
		q.Set("code_challenge", challenge)
		q.Set("code_challenge_method", "S256")

		http.Redirect(w, r, twitchAuthorizeURL+"?"+q.Encode(), http.StatusFound)
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func handleCallback(store *sqlite.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		if state != lastOAuthRole {
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		}

		data := url.Values{}
		data.Set("client_id", os.Getenv("TWITCH_CLIENT_ID"))
		data.Set("client_secret", os.Getenv("TWITCH_CLIENT_SECRET"))
		data.Set("code", code)
		data.Set("grant_type", "authorization_code")
		data.Set("redirect_uri", os.Getenv("TWITCH_REDIRECT_URI"))
		data.Set("code_verifier", lastCodeVerifier)

		req, err := http.NewRequest("POST", twitchTokenURL, strings.NewReader(data.Encode()))
		if err != nil {
			http.Error(w, "error building request", http.StatusInternalServerError)
			return
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			http.Error(w, "error calling token endpoint", http.StatusInternalServerError)
			return
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			http.Error(w, string(body), http.StatusInternalServerError)
			return
		}

		var payload tokenResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "error decoding response", http.StatusInternalServerError)
			return
		}

		cred := &domain.Credential{
			Platform:     domain.PlatformTwitch,
			Role:         state,
			AccessToken:  payload.AccessToken,
			RefreshToken: payload.RefreshToken,
			ExpiresAt:    time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
			UpdatedAt:    time.Now(),
		}
		if err := store.Save(context.Background(), cred); err != nil {
			http.Error(w, fmt.Sprintf("error saving credential: %v", err), http.StatusInternalServerError)
			return
		}

		fmt.Fprintf(w, "Stored %s credential. You can close this tab.\n", state)
		fmt.Printf("stored %s credential (expires %s)\n", state, cred.ExpiresAt.Format(time.RFC3339))
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("warning: could not load .env")
	}

	for _, k := range []string{"TWITCH_CLIENT_ID", "TWITCH_CLIENT_SECRET", "TWITCH_REDIRECT_URI"} {
		if os.Getenv(k) == "" {
			fmt.Printf("missing %s in .env\n", k)
			return
		}
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "steelbot.db"
	}
	store, err := sqlite.NewStore(dbPath)
	if err != nil {
		fmt.Println("store error:", err)
		return
	}
	defer store.Close()

	http.HandleFunc("/oauth/twitch/streamer", handleStartOAuth("streamer", []string{
		"channel:read:subscriptions",
		"channel:manage:broadcast",
	}))
	http.HandleFunc("/oauth/twitch/bot", handleStartOAuth("bot", []string{
		"chat:read",
		"chat:edit",
		"channel:moderate",
	}))
	http.HandleFunc("/oauth/twitch/callback", handleCallback(store))

	fmt.Println("Twitch OAuth helper listening on :3000")
	fmt.Println("-> streamer: http://localhost:3000/oauth/twitch/streamer")
	fmt.Println("-> bot:      http://localhost:3000/oauth/twitch/bot")

	if err := http.ListenAndServe(":3000", nil); err != nil {
		fmt.Println("server error:", err)
	}
}
