// Package auth maps command scopes to the chat roles allowed to use them.
package auth

import "sync"

// Role is a derived trust category, computed per message.
type Role string

const (
	RoleStreamer   Role = "streamer"
	RoleModerator  Role = "moderator"
	RoleSubscriber Role = "subscriber"
	RoleVIP        Role = "vip"
	RoleEveryone   Role = "everyone"
)

// Scope is a named permission a command may require.
type Scope string

const (
	ScopeThemeEdit          Scope = "theme/edit"
	ScopeCommandEdit        Scope = "command/edit"
	ScopeAliasEdit          Scope = "alias/edit"
	ScopeWordEdit           Scope = "word/edit"
	ScopePoll               Scope = "poll"
	ScopeCurrencyAdmin      Scope = "currency/admin"
	ScopeAfterStream        Scope = "afterstream"
	ScopeBypassURLWhitelist Scope = "chat/bypass-url-whitelist"
)

type Auth struct {
	mu     sync.RWMutex
	grants map[Scope]map[Role]struct{}
}

// New returns an Auth with the default grant table.
func New() *Auth {
	a := &Auth{grants: make(map[Scope]map[Role]struct{})}

	moderation := []Role{RoleStreamer, RoleModerator}
	for _, scope := range []Scope{ScopeThemeEdit, ScopeCommandEdit, ScopeAliasEdit, ScopeWordEdit, ScopePoll, ScopeCurrencyAdmin} {
		for _, role := range moderation {
			a.insert(scope, role)
		}
	}

	a.insert(ScopeAfterStream, RoleEveryone)

	for _, role := range []Role{RoleStreamer, RoleModerator, RoleSubscriber, RoleVIP} {
		a.insert(ScopeBypassURLWhitelist, role)
	}

	return a
}

func (a *Auth) insert(scope Scope, role Role) {
	if a.grants[scope] == nil {
		a.grants[scope] = make(map[Role]struct{})
	}
	a.grants[scope][role] = struct{}{}
}

// Allow grants scope to role.
func (a *Auth) Allow(scope Scope, role Role) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.insert(scope, role)
}

// Deny removes a grant.
func (a *Auth) Deny(scope Scope, role Role) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if roles, ok := a.grants[scope]; ok {
		delete(roles, role)
	}
}

// TestAny reports whether any of the given roles is granted scope.
func (a *Auth) TestAny(scope Scope, roles []Role) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	granted, ok := a.grants[scope]
	if !ok {
		return false
	}
	for _, role := range roles {
		if _, ok := granted[role]; ok {
			return true
		}
	}
	return false
}
