package aliases

import (
	"log"
	"strings"
	"unicode"
)

// Snapshot is an immutable alias table used for one or more dispatches.
type Snapshot struct {
	channel string
	entries map[string]*entry
}

// CycleError reports a repeated alias during expansion. Path holds every
// alias applied, including the repeated name at both occurrences.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "recursion found in alias expansion: " + strings.Join(e.Path, " -> ")
}

// Resolve matches the leading word of message case-insensitively against the
// table and returns the alias name and the rewritten message.
func (s *Snapshot) Resolve(message string) (string, string, bool) {
	first, rest := SplitFirst(message)
	if first == "" {
		return "", "", false
	}

	e, ok := s.entries[strings.ToLower(first)]
	if !ok {
		return "", "", false
	}

	var b strings.Builder
	if err := e.tmpl.Execute(&b, struct{ Rest string }{Rest: rest}); err != nil {
		log.Printf("aliases: render %s: %v", e.alias.Name, err)
		return "", "", false
	}
	return e.alias.Name, b.String(), true
}

// ExpandAll applies Resolve repeatedly until no alias matches. It returns
// the final message and the expansion path. A repeated alias name aborts
// with a CycleError; chains without repetition run to completion regardless
// of length.
func (s *Snapshot) ExpandAll(message string) (string, []string, error) {
	var path []string
	seen := make(map[string]struct{})

	for {
		name, next, ok := s.Resolve(message)
		if !ok {
			return message, path, nil
		}

		path = append(path, name)
		if _, dup := seen[name]; dup {
			return message, path, &CycleError{Path: path}
		}
		seen[name] = struct{}{}
		message = next
	}
}

// SplitFirst splits a message into its leading whitespace-delimited word and
// the remainder (with leading whitespace trimmed).
func SplitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
