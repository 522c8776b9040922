package commands

import (
	"context"

	"steelbot/internal/domain"
	"steelbot/internal/usecase/auth"
)

// AfterStream is the !afterstream handler queueing messages for the
// streamer to read after the stream.
type AfterStream struct {
	Repo domain.AfterStreamRepository
}

func (h *AfterStream) Scope() auth.Scope { return auth.ScopeAfterStream }

func (h *AfterStream) Handle(ctx context.Context, cmd *Context) error {
	text := cmd.Rest()
	if text == "" {
		return Errorf("expected a message to queue")
	}

	entry := &domain.AfterStream{
		Channel: cmd.Channel,
		User:    cmd.Login,
		Text:    text,
	}
	if err := h.Repo.AddAfterStream(ctx, entry); err != nil {
		return err
	}
	cmd.Respond("Added your message to the afterstream queue.")
	return nil
}
