// Package chatlog records chat messages so deletions and bans can be
// mirrored against the stored history.
package chatlog

import (
	"context"
	"log"
	"sync/atomic"

	"steelbot/internal/domain"
)

// Sink writes chat messages to the message log when enabled. All methods
// are safe to call from spawned tasks.
type Sink struct {
	repo    domain.MessageLogRepository
	enabled atomic.Bool
}

func NewSink(repo domain.MessageLogRepository, enabled bool) *Sink {
	s := &Sink{repo: repo}
	s.enabled.Store(enabled)
	return s
}

// SetEnabled toggles logging; deletions still apply while disabled.
func (s *Sink) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
}

func (s *Sink) Enabled() bool {
	return s.enabled.Load()
}

// Observe records one message. A missing message id is skipped since it
// could never be deleted later.
func (s *Sink) Observe(ctx context.Context, id, channel, user, text string) {
	if !s.enabled.Load() || s.repo == nil || id == "" {
		return
	}
	if err := s.repo.InsertMessage(ctx, id, channel, user, text); err != nil {
		log.Printf("chatlog: insert: %v", err)
	}
}

// DeleteByID mirrors a single-message deletion.
func (s *Sink) DeleteByID(ctx context.Context, id string) {
	if s.repo == nil || id == "" {
		return
	}
	if err := s.repo.DeleteMessageByID(ctx, id); err != nil {
		log.Printf("chatlog: delete by id: %v", err)
	}
}

// DeleteByUser mirrors a timeout or ban.
func (s *Sink) DeleteByUser(ctx context.Context, channel, user string) {
	if s.repo == nil {
		return
	}
	if err := s.repo.DeleteMessagesByUser(ctx, channel, user); err != nil {
		log.Printf("chatlog: delete by user: %v", err)
	}
}

// DeleteAll mirrors a full chat clear.
func (s *Sink) DeleteAll(ctx context.Context, channel string) {
	if s.repo == nil {
		return
	}
	if err := s.repo.DeleteAllMessages(ctx, channel); err != nil {
		log.Printf("chatlog: delete all: %v", err)
	}
}
