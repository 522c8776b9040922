// Package settings keeps the live configuration the chat engine consumes:
// every key has a current value plus a subscription stream that delivers
// whole-value replacements when it changes.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"steelbot/internal/domain"
)

// Keys used by the chat engine.
const (
	KeyBadWordsEnabled     = "chat/bad-words/enabled"
	KeyURLWhitelistEnabled = "chat/url-whitelist/enabled"
	KeyWhitelistedHosts    = "chat/whitelisted-hosts"
	KeyModeratorCooldown   = "chat/moderator-cooldown"
	KeyJoinMessage         = "chat/join-message"
	KeyLeaveMessage        = "chat/leave-message"
	KeyIdleThreshold       = "chat/idle-detection/threshold"
	KeyChatLogEnabled      = "chat-log/enabled"
	KeyAPIURL              = "remote/api-url"
	KeyCurrencyEnabled     = "currency/enabled"
	KeyCurrencyName        = "currency/name"
)

const subBufferSize = 8

type Settings struct {
	repo domain.SettingRepository

	mu     sync.RWMutex
	values map[string]string
	subs   map[string]map[int]chan string
	nextID int
}

// Load reads all persisted settings into memory.
func Load(ctx context.Context, repo domain.SettingRepository) (*Settings, error) {
	s := &Settings{
		repo:   repo,
		values: make(map[string]string),
		subs:   make(map[string]map[int]chan string),
	}

	if repo == nil {
		return s, nil
	}

	values, err := repo.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("settings: load: %w", err)
	}
	for k, v := range values {
		s.values[k] = v
	}
	return s, nil
}

// Get returns the current raw value for key. The second return reports
// whether the key is set at all.
func (s *Settings) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Settings) String(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

func (s *Settings) Bool(key string, def bool) bool {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (s *Settings) Int(key string, def int) int {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// StringSet parses a comma-separated value into a set.
func (s *Settings) StringSet(key string) map[string]struct{} {
	out := make(map[string]struct{})
	v, ok := s.Get(key)
	if !ok {
		return out
	}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out[part] = struct{}{}
	}
	return out
}

// Set persists and publishes a new value for key.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	if s.repo != nil {
		if err := s.repo.SaveSetting(ctx, key, value); err != nil {
			return fmt.Errorf("settings: save %s: %w", key, err)
		}
	}

	s.mu.Lock()
	s.values[key] = value
	channels := make([]chan string, 0, len(s.subs[key]))
	for _, ch := range s.subs[key] {
		channels = append(channels, ch)
	}
	s.mu.Unlock()

	for _, ch := range channels {
		// A full buffer means the subscriber is behind; it will pick up the
		// current value from its next delivery, so dropping is safe.
		select {
		case ch <- value:
		default:
		}
	}
	return nil
}

// Stream subscribes to changes of key. The returned function unsubscribes.
func (s *Settings) Stream(key string) (<-chan string, func()) {
	ch := make(chan string, subBufferSize)

	s.mu.Lock()
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]chan string)
	}
	id := s.nextID
	s.nextID++
	s.subs[key][id] = ch
	s.mu.Unlock()

	// The channel is never closed: Set sends outside the lock, so a
	// publisher may still hold a reference after the unsubscribe.
	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if subs, ok := s.subs[key]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(s.subs, key)
			}
		}
	}

	return ch, unsubscribe
}

// ParseStringSet parses a comma-separated list the way StringSet does, for
// use on streamed raw values.
func ParseStringSet(v string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out[part] = struct{}{}
	}
	return out
}
