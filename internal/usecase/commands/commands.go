// Package commands holds the handler contract for chat commands, the
// registry resolving them by name, and the table of user-defined template
// commands.
package commands

import (
	"context"
	"fmt"

	"steelbot/internal/usecase/auth"
)

// Handler is a named chat command. Scope returns the required permission,
// or empty when anyone may run it.
type Handler interface {
	Scope() auth.Scope
	Handle(ctx context.Context, cmd *Context) error
}

// UserError carries a message meant for the calling user verbatim. Any
// other handler error turns into a generic apology.
type UserError string

func (e UserError) Error() string { return string(e) }

// Errorf builds a UserError.
func Errorf(format string, a ...any) error {
	return UserError(fmt.Sprintf(format, a...))
}
