// Package aliases rewrites chat messages whose leading word matches a
// registered alias. Expansion repeats until no alias matches; a repeated
// alias name in one expansion is a cycle and aborts that message only.
package aliases

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"text/template"

	"steelbot/internal/domain"
)

type entry struct {
	alias *domain.Alias
	tmpl  *template.Template
}

// Store is the in-memory alias table for one channel, backed by a
// repository. The event loop consumes immutable snapshots of it.
type Store struct {
	repo    domain.AliasRepository
	channel string

	mu      sync.RWMutex
	entries map[string]*entry
	subs    map[int]chan *Snapshot
	nextID  int
}

func Load(ctx context.Context, repo domain.AliasRepository, channel string) (*Store, error) {
	s := &Store{
		repo:    repo,
		channel: channel,
		entries: make(map[string]*entry),
		subs:    make(map[int]chan *Snapshot),
	}

	if repo == nil {
		return s, nil
	}

	list, err := repo.ListAliases(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("aliases: load: %w", err)
	}
	for _, alias := range list {
		if alias == nil || alias.Disabled {
			continue
		}
		e, err := compile(alias)
		if err != nil {
			log.Printf("aliases: skipping %s: %v", alias.Name, err)
			continue
		}
		s.entries[e.alias.Name] = e
	}
	return s, nil
}

func compile(alias *domain.Alias) (*entry, error) {
	name := strings.ToLower(strings.TrimSpace(alias.Name))
	if name == "" {
		return nil, fmt.Errorf("aliases: empty name")
	}
	tmpl, err := template.New(name).Parse(alias.Template)
	if err != nil {
		return nil, fmt.Errorf("aliases: compile %s: %w", name, err)
	}
	copied := *alias
	copied.Name = name
	return &entry{alias: &copied, tmpl: tmpl}, nil
}

// Edit inserts or replaces an alias and publishes a new snapshot.
func (s *Store) Edit(ctx context.Context, name, templateSrc string) error {
	e, err := compile(&domain.Alias{Channel: s.channel, Name: name, Template: templateSrc})
	if err != nil {
		return err
	}

	if s.repo != nil {
		if err := s.repo.UpsertAlias(ctx, e.alias); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.entries[e.alias.Name] = e
	s.mu.Unlock()
	s.publish()
	return nil
}

// Delete removes an alias; reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	s.mu.RLock()
	_, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if s.repo != nil {
		if err := s.repo.DeleteAlias(ctx, s.channel, key); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	s.publish()
	return true, nil
}

// Rename moves an alias to a new name; fails on conflict.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	fromKey := strings.ToLower(strings.TrimSpace(from))
	toKey := strings.ToLower(strings.TrimSpace(to))

	s.mu.Lock()
	e, ok := s.entries[fromKey]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("aliases: no such alias: %s", fromKey)
	}
	if _, exists := s.entries[toKey]; exists {
		s.mu.Unlock()
		return fmt.Errorf("aliases: alias already exists: %s", toKey)
	}
	renamed := *e.alias
	renamed.Name = toKey
	s.entries[toKey] = &entry{alias: &renamed, tmpl: e.tmpl}
	delete(s.entries, fromKey)
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.RenameAlias(ctx, s.channel, fromKey, toKey); err != nil {
			log.Printf("aliases: rename %s in database: %v", fromKey, err)
		}
	}
	s.publish()
	return nil
}

// List returns all aliases sorted by nothing in particular.
func (s *Store) List() []*domain.Alias {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Alias, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.alias)
	}
	return out
}

// Snapshot returns an immutable view for dispatch.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[string]*entry, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return &Snapshot{channel: s.channel, entries: entries}
}

// Subscribe delivers a new snapshot after every mutation.
func (s *Store) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 4)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	// The channel is never closed: publish sends outside the lock, so it
	// may still hold a reference after the unsubscribe.
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish() {
	snapshot := s.Snapshot()
	s.mu.RLock()
	channels := make([]chan *Snapshot, 0, len(s.subs))
	for _, ch := range s.subs {
		channels = append(channels, ch)
	}
	s.mu.RUnlock()
	for _, ch := range channels {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
