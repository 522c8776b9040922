package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"steelbot/internal/app/events"
	"steelbot/internal/domain"
	"steelbot/internal/irc"
	"steelbot/internal/usecase/aliases"
	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/chatlog"
	"steelbot/internal/usecase/commands"
	"steelbot/internal/usecase/credentials"
	"steelbot/internal/usecase/currency"
	"steelbot/internal/usecase/idle"
	"steelbot/internal/usecase/scripts"
	"steelbot/internal/usecase/settings"
	"steelbot/internal/usecase/words"
)

const (
	serverAddr = "wss://irc-ws.chat.twitch.tv:443"

	pingInterval   = 10 * time.Second
	pongTimeout    = 5 * time.Second
	membersRefresh = 5 * time.Minute
	idleInterval   = time.Minute
	leaveGrace     = time.Second

	defaultLeaveMessage = "Leaving chat... VoHiYo"
)

// ErrLiveness ends a session when the peer stops answering pings.
var ErrLiveness = errors.New("chat: no ping reply before timeout")

// ErrAuthentication ends a session after a login failure notice; the token
// is force-refreshed before returning it.
var ErrAuthentication = errors.New("chat: login authentication failed")

// outbound is the sender surface the loop writes through; satisfied by
// *irc.Sender.
type outbound interface {
	Privmsg(text string)
	PrivmsgImmediate(text string)
	SendImmediate(line string)
	CapReq(cap string)
	Mods()
	Vips()
	Delete(id string)
	Ping(server string)
	Pong(token string)
	Done() <-chan error
}

// SubscriberLookup answers whether a user subscribes to the broadcaster.
type SubscriberLookup interface {
	IsSubscriber(ctx context.Context, broadcasterID, userID string) (bool, error)
}

// Deps is everything a session consumes. Identities must be resolved
// before the session starts.
type Deps struct {
	Bus      *events.Bus
	Settings *settings.Settings
	Auth     *auth.Auth

	Aliases  *aliases.Store
	Commands *commands.Store
	Registry *commands.Registry
	Hooks    *commands.Hooks
	Words    *words.Store

	Currency        *currency.Currency
	CurrencyHandler commands.Handler
	Scripts         *scripts.Manager
	ScriptEvents    <-chan scripts.Event
	ChatLog         *chatlog.Sink
	Idle            *idle.Idle
	Credentials     *credentials.Provider
	Subscribers     SubscriberLookup

	Bot      *domain.Identity
	Streamer *domain.Identity

	// DepChanged signals that a session dependency (such as a refreshed
	// credential) requires a restart; the session leaves gracefully.
	DepChanged <-chan struct{}
}

func (d *Deps) validate() error {
	if d.Bot == nil || d.Bot.Login == "" {
		return fmt.Errorf("chat: bot identity missing")
	}
	if d.Streamer == nil || d.Streamer.Login == "" {
		return fmt.Errorf("chat: streamer identity missing")
	}
	if d.Settings == nil || d.Auth == nil || d.Aliases == nil || d.Commands == nil ||
		d.Registry == nil || d.Hooks == nil || d.Words == nil || d.Credentials == nil {
		return fmt.Errorf("chat: incomplete dependencies")
	}
	return nil
}

// Session is one connection's worth of engine state. All fields below are
// owned by the event loop goroutine.
type Session struct {
	deps    Deps
	channel string

	sender outbound

	members   *Members
	aliasSnap *aliases.Snapshot
	cmdSnap   *commands.Snapshot
	modCfg    moderationConfig
	apiURL    string
	cooldown  time.Duration

	pongFuse  *irc.Fuse
	leaveFuse *irc.Fuse

	greeted        bool
	lastModCommand time.Time
}

// NewSession validates deps and captures the initial snapshots.
func NewSession(deps Deps) (*Session, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	s := &Session{
		deps:      deps,
		channel:   "#" + deps.Streamer.Login,
		members:   NewMembers(),
		aliasSnap: deps.Aliases.Snapshot(),
		cmdSnap:   deps.Commands.Snapshot(),
		pongFuse:  irc.NewFuse(),
		leaveFuse: irc.NewFuse(),
	}

	s.modCfg = moderationConfig{
		badWordsEnabled:     deps.Settings.Bool(settings.KeyBadWordsEnabled, false),
		urlWhitelistEnabled: deps.Settings.Bool(settings.KeyURLWhitelistEnabled, false),
		whitelistedHosts:    deps.Settings.StringSet(settings.KeyWhitelistedHosts),
	}
	s.apiURL = deps.Settings.String(settings.KeyAPIURL, "")
	s.cooldown = time.Duration(deps.Settings.Int(settings.KeyModeratorCooldown, 0)) * time.Second
	return s, nil
}
