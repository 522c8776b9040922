package commands

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"text/template"

	"steelbot/internal/domain"
)

type tableEntry struct {
	spec        *domain.CommandSpec
	tmpl        *template.Template
	tracksCount bool
	count       atomic.Int64
}

// Store is the per-channel table of user-defined template commands. Like
// the alias table, the event loop dispatches against snapshots.
type Store struct {
	repo    domain.CommandRepository
	channel string

	mu      sync.RWMutex
	entries map[string]*tableEntry
	subs    map[int]chan *Snapshot
	nextID  int
}

func LoadStore(ctx context.Context, repo domain.CommandRepository, channel string) (*Store, error) {
	s := &Store{
		repo:    repo,
		channel: channel,
		entries: make(map[string]*tableEntry),
		subs:    make(map[int]chan *Snapshot),
	}

	if repo == nil {
		return s, nil
	}

	list, err := repo.ListCommands(ctx, channel)
	if err != nil {
		return nil, fmt.Errorf("commands: load: %w", err)
	}
	for _, spec := range list {
		if spec == nil || spec.Disabled {
			continue
		}
		e, err := compileSpec(spec)
		if err != nil {
			log.Printf("commands: skipping %s: %v", spec.Name, err)
			continue
		}
		s.entries[e.spec.Name] = e
	}
	return s, nil
}

func compileSpec(spec *domain.CommandSpec) (*tableEntry, error) {
	name := strings.ToLower(strings.TrimSpace(spec.Name))
	if name == "" {
		return nil, fmt.Errorf("commands: empty name")
	}
	tmpl, err := template.New(name).Parse(spec.Template)
	if err != nil {
		return nil, fmt.Errorf("commands: compile %s: %w", name, err)
	}
	copied := *spec
	copied.Name = name
	e := &tableEntry{
		spec:        &copied,
		tmpl:        tmpl,
		tracksCount: strings.Contains(spec.Template, ".Count"),
	}
	e.count.Store(copied.Count)
	return e, nil
}

// Edit inserts or replaces a command and publishes a new snapshot.
func (s *Store) Edit(ctx context.Context, name, templateSrc string) error {
	e, err := compileSpec(&domain.CommandSpec{Channel: s.channel, Name: name, Template: templateSrc})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if prev, ok := s.entries[e.spec.Name]; ok {
		e.count.Store(prev.count.Load())
	}
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.UpsertCommand(ctx, e.spec); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.entries[e.spec.Name] = e
	s.mu.Unlock()
	s.publish()
	return nil
}

// Delete removes a command; reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	s.mu.RLock()
	_, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if s.repo != nil {
		if err := s.repo.DeleteCommand(ctx, s.channel, key); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	s.publish()
	return true, nil
}

// Get returns the stored command spec by name.
func (s *Store) Get(name string) (*domain.CommandSpec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	spec := *e.spec
	spec.Count = e.count.Load()
	return &spec, true
}

// List returns all command names.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for name := range s.entries {
		out = append(out, name)
	}
	return out
}

// Snapshot returns an immutable view for dispatch. Usage counters are
// shared with the store so edits do not reset them.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[string]*tableEntry, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return &Snapshot{repo: s.repo, channel: s.channel, entries: entries}
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

// Snapshot is an immutable command table used for dispatch.
type Snapshot struct {
	repo    domain.CommandRepository
	channel string
	entries map[string]*tableEntry
}

// Resolve matches the leading word of message against the table and
// renders the response. The usage counter only moves when the template
// renders it.
func (s *Snapshot) Resolve(ctx context.Context, message, login, target string) (string, bool) {
	first, rest := splitFirst(message)
	if first == "" {
		return "", false
	}

	e, ok := s.entries[strings.ToLower(first)]
	if !ok {
		return "", false
	}

	count := e.count.Load()
	if e.tracksCount {
		count = e.count.Add(1)
		if s.repo != nil {
			if err := s.repo.IncrementCommandCount(ctx, s.channel, e.spec.Name); err != nil {
				log.Printf("commands: persist count for %s: %v", e.spec.Name, err)
			}
		}
	}

	data := struct {
		Name   string
		Target string
		Count  int64
		Rest   string
	}{Name: login, Target: target, Count: count, Rest: rest}

	var b strings.Builder
	if err := e.tmpl.Execute(&b, data); err != nil {
		log.Printf("commands: render %s: %v", e.spec.Name, err)
		return "", false
	}
	return b.String(), true
}

func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}
