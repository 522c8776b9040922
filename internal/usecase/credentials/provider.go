// Package credentials keeps Twitch OAuth tokens fresh and hands them out to
// the chat session by role.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"steelbot/internal/domain"
)

// RoleBot and RoleStreamer are the two credentials the bot operates with:
// the account speaking in chat and the broadcaster account used for
// channel-scoped API calls.
const (
	RoleBot      = "bot"
	RoleStreamer = "streamer"
)

type Config struct {
	ClientID     string
	ClientSecret string
}

// Hook observes every refreshed credential.
type Hook func(ctx context.Context, cred *domain.Credential)

// Provider loads credentials from the repository and refreshes them before
// expiry, or on demand after an authentication failure.
type Provider struct {
	repo    domain.CredentialRepository
	cfg     Config
	httpCli *http.Client

	hooksMu sync.RWMutex
	hooks   []Hook
}

func NewProvider(repo domain.CredentialRepository, cfg Config) *Provider {
	return &Provider{
		repo: repo,
		cfg:  cfg,
		httpCli: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *Provider) RegisterHook(h Hook) {
	if h == nil {
		return
	}
	p.hooksMu.Lock()
	defer p.hooksMu.Unlock()
	p.hooks = append(p.hooks, h)
}

func (p *Provider) notifyHooks(ctx context.Context, cred *domain.Credential) {
	p.hooksMu.RLock()
	hooks := append([]Hook(nil), p.hooks...)
	p.hooksMu.RUnlock()
	for _, h := range hooks {
		h(ctx, cred)
	}
}

// Token returns a current access token for role, refreshing first when the
// stored one is close to expiry.
func (p *Provider) Token(ctx context.Context, role string) (string, error) {
	cred, err := p.repo.Get(ctx, domain.PlatformTwitch, role)
	if err != nil {
		return "", fmt.Errorf("credentials: get %s: %w", role, err)
	}
	if cred == nil {
		return "", fmt.Errorf("credentials: no %s credential; run the oauth helper first", role)
	}

	if needsRefresh(cred) && cred.RefreshToken != "" {
		if err := p.refresh(ctx, cred); err != nil {
			return "", err
		}
	}
	return cred.AccessToken, nil
}

// ForceRefresh refreshes role's token regardless of expiry. Used when chat
// reports an authentication failure.
func (p *Provider) ForceRefresh(ctx context.Context, role string) error {
	cred, err := p.repo.Get(ctx, domain.PlatformTwitch, role)
	if err != nil {
		return fmt.Errorf("credentials: get %s: %w", role, err)
	}
	if cred == nil || cred.RefreshToken == "" {
		return fmt.Errorf("credentials: cannot refresh %s: no refresh token", role)
	}
	return p.refresh(ctx, cred)
}

// Start refreshes all stored credentials on a fixed interval until ctx is
// done.
func (p *Provider) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.RefreshAll(ctx); err != nil {
					log.Printf("credentials: %v", err)
				}
			}
		}
	}()
}

func (p *Provider) RefreshAll(ctx context.Context) error {
	creds, err := p.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("credentials: list: %w", err)
	}

	for _, cred := range creds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cred == nil || cred.RefreshToken == "" || !needsRefresh(cred) {
			continue
		}
		if err := p.refresh(ctx, cred); err != nil {
			return err
		}
	}
	return nil
}

func needsRefresh(cred *domain.Credential) bool {
	if cred.ExpiresAt.IsZero() {
		return true
	}
	return time.Until(cred.ExpiresAt) < 10*time.Minute
}

func (p *Provider) refresh(ctx context.Context, cred *domain.Credential) error {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return fmt.Errorf("credentials: client id/secret not configured")
	}

	data := url.Values{}
	data.Set("client_id", p.cfg.ClientID)
	data.Set("client_secret", p.cfg.ClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", cred.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://id.twitch.tv/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("credentials: refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("credentials: refresh http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("credentials: refresh read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("credentials: refresh status %d: %s", resp.StatusCode, string(body))
	}

	var payload tokenPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("credentials: refresh decode: %w", err)
	}

	cred.AccessToken = payload.AccessToken
	if payload.RefreshToken != "" {
		cred.RefreshToken = payload.RefreshToken
	}
	cred.ExpiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	cred.UpdatedAt = time.Now()

	if err := p.repo.Save(ctx, cred); err != nil {
		return err
	}
	p.notifyHooks(ctx, cred)
	return nil
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
