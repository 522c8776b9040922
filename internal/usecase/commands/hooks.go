package commands

import "sync"

// HookFunc peeks at every chat message (caller login, raw text).
type HookFunc func(login, text string)

// Hooks is the per-message hook registry; ids are opaque and removable.
type Hooks struct {
	mu   sync.Mutex
	next int
	fns  map[int]HookFunc
}

func NewHooks() *Hooks {
	return &Hooks{fns: make(map[int]HookFunc)}
}

// Register adds fn and returns its id.
func (h *Hooks) Register(fn HookFunc) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.fns[id] = fn
	return id
}

// Remove deletes the hook with the given id.
func (h *Hooks) Remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.fns, id)
}

// Run invokes every registered hook with the message.
func (h *Hooks) Run(login, text string) {
	h.mu.Lock()
	fns := make([]HookFunc, 0, len(h.fns))
	for _, fn := range h.fns {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(login, text)
	}
}
