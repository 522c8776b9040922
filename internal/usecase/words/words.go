// Package words keeps the bad-word denylist used for message moderation.
package words

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"text/template"
	"unicode"

	"steelbot/internal/domain"
)

type entry struct {
	word *domain.Word
	why  *template.Template
}

// Store is the mutable denylist; moderation runs against snapshots of it.
type Store struct {
	repo domain.WordRepository

	mu      sync.RWMutex
	entries map[string]*entry
}

func Load(ctx context.Context, repo domain.WordRepository) (*Store, error) {
	s := &Store{repo: repo, entries: make(map[string]*entry)}

	if repo == nil {
		return s, nil
	}

	list, err := repo.ListWords(ctx)
	if err != nil {
		return nil, fmt.Errorf("words: load: %w", err)
	}
	for _, w := range list {
		e, err := compile(w)
		if err != nil {
			log.Printf("words: skipping %q: %v", w.Word, err)
			continue
		}
		s.entries[e.word.Word] = e
	}
	return s, nil
}

func compile(w *domain.Word) (*entry, error) {
	word := strings.ToLower(strings.TrimSpace(w.Word))
	if word == "" {
		return nil, fmt.Errorf("words: empty word")
	}

	var why *template.Template
	if w.Why != "" {
		tmpl, err := template.New(word).Parse(w.Why)
		if err != nil {
			return nil, fmt.Errorf("words: compile why for %q: %w", word, err)
		}
		why = tmpl
	}

	copied := *w
	copied.Word = word
	return &entry{word: &copied, why: why}, nil
}

// Edit inserts or replaces a denied word. why may be empty.
func (s *Store) Edit(ctx context.Context, word, why string) error {
	e, err := compile(&domain.Word{Word: word, Why: why})
	if err != nil {
		return err
	}

	if s.repo != nil {
		if err := s.repo.UpsertWord(ctx, e.word); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.entries[e.word.Word] = e
	s.mu.Unlock()
	return nil
}

// Delete removes a word; reports whether it existed.
func (s *Store) Delete(ctx context.Context, word string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(word))

	s.mu.RLock()
	_, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if s.repo != nil {
		if err := s.repo.DeleteWord(ctx, key); err != nil {
			return false, err
		}
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return true, nil
}

// Tester returns an immutable view for scanning messages.
func (s *Store) Tester() *Tester {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[string]*entry, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return &Tester{entries: entries}
}

// Tester scans message text against a frozen denylist.
type Tester struct {
	entries map[string]*entry
}

// Hit describes a matched word and its optional rendered explanation.
type Hit struct {
	Word string
	Why  string
}

// Test scans every trimmed word in message and returns the first hit.
// name and target feed the explanation template.
func (t *Tester) Test(message, name, target string) (*Hit, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}

	for _, word := range TrimmedWords(message) {
		e, ok := t.entries[word]
		if !ok {
			continue
		}

		hit := &Hit{Word: e.word.Word}
		if e.why != nil {
			var b strings.Builder
			data := struct{ Name, Target string }{Name: name, Target: target}
			if err := e.why.Execute(&b, data); err != nil {
				log.Printf("words: render why for %q: %v", e.word.Word, err)
			} else {
				hit.Why = b.String()
			}
		}
		return hit, true
	}
	return nil, false
}

// TrimmedWords lowercases message, splits on whitespace, and strips
// leading and trailing punctuation from each token. Empty tokens are
// dropped.
func TrimmedWords(message string) []string {
	fields := strings.Fields(strings.ToLower(message))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
