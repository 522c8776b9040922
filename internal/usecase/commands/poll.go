package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/words"
)

// Poll runs a chat vote by registering a message hook that counts each
// user's first matching option.
type Poll struct {
	Hooks *Hooks

	mu      sync.Mutex
	active  bool
	hookID  int
	options map[string]int
	voters  map[string]struct{}
}

func (h *Poll) Scope() auth.Scope { return auth.ScopePoll }

func (h *Poll) Handle(ctx context.Context, cmd *Context) error {
	sub, ok := cmd.Next()
	if !ok {
		return Errorf("expected: run <options...> or close")
	}

	switch sub {
	case "run":
		return h.run(cmd)
	case "close":
		return h.close(cmd)
	default:
		return Errorf("unknown subcommand: %s", sub)
	}
}

func (h *Poll) run(cmd *Context) error {
	var options []string
	for {
		opt, ok := cmd.Next()
		if !ok {
			break
		}
		options = append(options, strings.ToLower(opt))
	}
	if len(options) < 2 {
		return Errorf("expected: run <option> <option> [options...]")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active {
		return Errorf("a poll is already running")
	}

	h.active = true
	h.options = make(map[string]int, len(options))
	for _, opt := range options {
		h.options[opt] = 0
	}
	h.voters = make(map[string]struct{})
	h.hookID = h.Hooks.Register(h.collect)

	cmd.Privmsg("Poll open! Vote with: %s", strings.Join(options, ", "))
	return nil
}

func (h *Poll) collect(login, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.active {
		return
	}
	if _, voted := h.voters[login]; voted {
		return
	}
	for _, word := range words.TrimmedWords(text) {
		if _, ok := h.options[word]; ok {
			h.options[word]++
			h.voters[login] = struct{}{}
			return
		}
	}
}

func (h *Poll) close(cmd *Context) error {
	h.mu.Lock()
	if !h.active {
		h.mu.Unlock()
		return Errorf("no poll is running")
	}

	h.active = false
	h.Hooks.Remove(h.hookID)
	results := make([]string, 0, len(h.options))
	for opt, votes := range h.options {
		results = append(results, fmt.Sprintf("%s = %d", opt, votes))
	}
	h.options = nil
	h.voters = nil
	h.mu.Unlock()

	sort.Strings(results)
	cmd.RespondLines(results, "no votes cast")
	return nil
}
