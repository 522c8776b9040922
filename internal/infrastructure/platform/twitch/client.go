// Package twitchinfra is the Helix API adapter: user lookup and the
// subscriber check backing the subscriber chat role.
package twitchinfra

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nicklaw5/helix/v2"

	"steelbot/internal/domain"
)

const subscriberCacheTTL = 5 * time.Minute

type Client struct {
	client *helix.Client

	cacheMu sync.Mutex
	subs    map[string]subEntry
}

type subEntry struct {
	isSub   bool
	checked time.Time
}

func NewClient(clientID, userAccessToken string) (*Client, error) {
	client, err := helix.NewClient(&helix.Options{
		ClientID:        clientID,
		UserAccessToken: userAccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("helix: NewClient: %w", err)
	}

	return &Client{
		client: client,
		subs:   make(map[string]subEntry),
	}, nil
}

// SetToken swaps the user access token after a refresh.
func (c *Client) SetToken(token string) {
	c.client.SetUserAccessToken(token)
}

// UserByLogin resolves a login name to a full identity.
func (c *Client) UserByLogin(ctx context.Context, login string) (*domain.Identity, error) {
	resp, err := c.client.GetUsers(&helix.UsersParams{Logins: []string{login}})
	if err != nil {
		return nil, fmt.Errorf("helix: GetUsers: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("helix: GetUsers failed (%d: %s) %s",
			resp.StatusCode, resp.Error, resp.ErrorMessage)
	}
	if len(resp.Data.Users) == 0 {
		return nil, fmt.Errorf("helix: no such user: %s", login)
	}

	user := resp.Data.Users[0]
	return &domain.Identity{
		ID:          user.ID,
		Login:       user.Login,
		DisplayName: user.DisplayName,
	}, nil
}

// IsSubscriber reports whether userID subscribes to broadcasterID. Results
// are cached briefly since the check runs per chat message.
func (c *Client) IsSubscriber(ctx context.Context, broadcasterID, userID string) (bool, error) {
	key := broadcasterID + "/" + userID

	c.cacheMu.Lock()
	if entry, ok := c.subs[key]; ok && time.Since(entry.checked) < subscriberCacheTTL {
		c.cacheMu.Unlock()
		return entry.isSub, nil
	}
	c.cacheMu.Unlock()

	resp, err := c.client.CheckUserSubscription(&helix.UserSubscriptionsParams{
		BroadcasterID: broadcasterID,
		UserID:        userID,
	})
	if err != nil {
		return false, fmt.Errorf("helix: CheckUserSubscription: %w", err)
	}

	var isSub bool
	switch resp.StatusCode {
	case http.StatusOK:
		isSub = len(resp.Data.UserSubscriptions) > 0
	case http.StatusNotFound:
		isSub = false
	default:
		return false, fmt.Errorf("helix: CheckUserSubscription failed (%d: %s) %s",
			resp.StatusCode, resp.Error, resp.ErrorMessage)
	}

	c.cacheMu.Lock()
	c.subs[key] = subEntry{isSub: isSub, checked: time.Now()}
	c.cacheMu.Unlock()
	return isSub, nil
}
