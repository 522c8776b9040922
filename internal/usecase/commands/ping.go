package commands

import (
	"context"

	"steelbot/internal/usecase/auth"
)

// Ping answers !ping and notifies listeners that the bot is alive.
type Ping struct {
	Notify func()
}

func (h *Ping) Scope() auth.Scope { return "" }

func (h *Ping) Handle(ctx context.Context, cmd *Context) error {
	cmd.Respond("What do you want?")
	if h.Notify != nil {
		h.Notify()
	}
	return nil
}
