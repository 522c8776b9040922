// Package chat is the connection engine: one session per connection, a
// single event loop owning all session state, and a supervisor restarting
// sessions with backoff.
package chat

import (
	"sort"
	"strings"
	"sync"

	"steelbot/internal/usecase/auth"
)

// Members holds the channel's moderator and VIP sets. The event loop is
// the only writer (on notice parsing); spawned tasks read.
type Members struct {
	mu   sync.RWMutex
	mods map[string]struct{}
	vips map[string]struct{}
}

func NewMembers() *Members {
	return &Members{
		mods: make(map[string]struct{}),
		vips: make(map[string]struct{}),
	}
}

func (m *Members) SetMods(logins []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mods = toSet(logins)
}

func (m *Members) SetVips(logins []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vips = toSet(logins)
}

func (m *Members) ClearMods() { m.SetMods(nil) }
func (m *Members) ClearVips() { m.SetVips(nil) }

func (m *Members) IsMod(login string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.mods[strings.ToLower(login)]
	return ok
}

func (m *Members) IsVip(login string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vips[strings.ToLower(login)]
	return ok
}

// Mods returns the moderator logins, sorted.
func (m *Members) Mods() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.mods))
	for login := range m.mods {
		out = append(out, login)
	}
	sort.Strings(out)
	return out
}

func toSet(logins []string) map[string]struct{} {
	set := make(map[string]struct{}, len(logins))
	for _, login := range logins {
		login = strings.ToLower(strings.TrimSpace(login))
		if login != "" {
			set[login] = struct{}{}
		}
	}
	return set
}

// roles derives the caller's trust roles for one message. isSub is
// resolved lazily by the caller since it may need an API round trip.
func roles(members *Members, channelOwner, login string, isSub bool) []auth.Role {
	out := []auth.Role{auth.RoleEveryone}
	login = strings.ToLower(login)

	if login == strings.ToLower(channelOwner) {
		out = append(out, auth.RoleStreamer, auth.RoleModerator)
		return out
	}
	if members.IsMod(login) {
		out = append(out, auth.RoleModerator)
	}
	if members.IsVip(login) {
		out = append(out, auth.RoleVIP)
	}
	if isSub {
		out = append(out, auth.RoleSubscriber)
	}
	return out
}

func isModerator(rs []auth.Role) bool {
	for _, r := range rs {
		if r == auth.RoleModerator || r == auth.RoleStreamer {
			return true
		}
	}
	return false
}
