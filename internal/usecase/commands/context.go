package commands

import (
	"fmt"
	"strings"
	"unicode"

	"steelbot/internal/usecase/auth"
)

// Sender is the outbound side a handler responds through.
type Sender interface {
	Privmsg(text string)
	PrivmsgImmediate(text string)
}

// Context carries the caller, the remaining input tokens, and the response
// channel for one command invocation.
type Context struct {
	Channel  string
	Login    string
	Display  string
	Roles    []auth.Role
	Injected bool
	APIURL   string

	auth   *auth.Auth
	sender Sender
	rest   string
}

func NewContext(sender Sender, a *auth.Auth, channel, login, display string, roles []auth.Role, injected bool, rest string) *Context {
	return &Context{
		Channel:  channel,
		Login:    login,
		Display:  display,
		Roles:    roles,
		Injected: injected,
		auth:     a,
		sender:   sender,
		rest:     strings.TrimSpace(rest),
	}
}

// Next consumes and returns the next whitespace-delimited argument.
func (c *Context) Next() (string, bool) {
	if c.rest == "" {
		return "", false
	}
	i := strings.IndexFunc(c.rest, unicode.IsSpace)
	if i < 0 {
		arg := c.rest
		c.rest = ""
		return arg, true
	}
	arg := c.rest[:i]
	c.rest = strings.TrimLeftFunc(c.rest[i:], unicode.IsSpace)
	return arg, true
}

// Rest returns the unconsumed remainder of the arguments.
func (c *Context) Rest() string {
	return c.rest
}

// HasScope reports whether the caller may use scope. Injected principals
// bypass authorization entirely.
func (c *Context) HasScope(scope auth.Scope) bool {
	if c.Injected {
		return true
	}
	if scope == "" {
		return true
	}
	if c.auth == nil {
		return false
	}
	return c.auth.TestAny(scope, c.Roles)
}

// IsModerator reports whether the caller holds a moderation role.
func (c *Context) IsModerator() bool {
	for _, role := range c.Roles {
		if role == auth.RoleModerator || role == auth.RoleStreamer {
			return true
		}
	}
	return false
}

// Respond sends a reply addressed to the caller.
func (c *Context) Respond(format string, a ...any) {
	text := fmt.Sprintf(format, a...)
	if c.Display == "" {
		c.sender.Privmsg(text)
		return
	}
	c.sender.Privmsg(fmt.Sprintf("%s -> %s", c.Display, text))
}

// Privmsg sends an unaddressed channel message.
func (c *Context) Privmsg(format string, a ...any) {
	c.sender.Privmsg(fmt.Sprintf(format, a...))
}

// RespondLines partitions items into protocol-safe lines and sends the
// first one; further lines are summarized, not sent. An empty set sends
// empty instead.
func (c *Context) RespondLines(items []string, empty string) {
	lines := Partition(items, DefaultWidth, DefaultSeparator)
	switch len(lines) {
	case 0:
		c.Respond("%s", empty)
	case 1:
		c.Respond("%s", lines[0])
	default:
		c.Respond("%s ... %d line(s) not shown.", lines[0], len(lines)-1)
	}
}
