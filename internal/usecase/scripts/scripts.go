// Package scripts loads user-provided Lua command handlers from a directory
// and keeps them reloadable while the bot runs.
//
// A script file named greet.lua answers !greet; it must define a global
// function handler(user, rest) and may return a string to send back.
package scripts

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"

	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/commands"
)

const handlerFunction = "handler"

// Script is one loaded Lua file with its own interpreter state.
type Script struct {
	path string

	mu    sync.Mutex
	state *lua.State
}

func loadScript(path string) (*Script, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("scripts: load %s: %w", path, err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("scripts: run %s: %w", path, err)
	}
	return &Script{path: path, state: state}, nil
}

// Call invokes the script's handler with the caller login and argument
// string; a string return value becomes the response.
func (s *Script) Call(login, rest string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Global(handlerFunction)
	if !s.state.IsFunction(-1) {
		s.state.Pop(1)
		return "", fmt.Errorf("scripts: %s does not define %s", s.path, handlerFunction)
	}

	s.state.PushString(login)
	s.state.PushString(rest)
	if err := s.state.ProtectedCall(2, 1, 0); err != nil {
		return "", fmt.Errorf("scripts: call %s: %w", s.path, err)
	}

	out, _ := s.state.ToString(-1)
	s.state.Pop(1)
	return out, nil
}

// Manager owns the set of loaded scripts, keyed by command name.
type Manager struct {
	dir string

	mu      sync.RWMutex
	scripts map[string]*Script
}

func NewManager(dir string) *Manager {
	return &Manager{dir: dir, scripts: make(map[string]*Script)}
}

// LoadDir loads every .lua file in the manager's directory. Individual
// script failures are logged and skipped.
func (m *Manager) LoadDir() error {
	if m.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scripts: read dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		if err := m.Reload(filepath.Join(m.dir, entry.Name())); err != nil {
			log.Printf("scripts: %v", err)
		}
	}
	return nil
}

// Reload (re)loads the script at path, replacing any previous version.
func (m *Manager) Reload(path string) error {
	name := commandName(path)
	if name == "" {
		return fmt.Errorf("scripts: not a script file: %s", path)
	}

	script, err := loadScript(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.scripts[name] = script
	m.mu.Unlock()
	log.Printf("scripts: loaded %s as !%s", path, name)
	return nil
}

// Unload removes the script previously loaded from path.
func (m *Manager) Unload(path string) {
	name := commandName(path)
	if name == "" {
		return
	}

	m.mu.Lock()
	_, ok := m.scripts[name]
	delete(m.scripts, name)
	m.mu.Unlock()
	if ok {
		log.Printf("scripts: unloaded !%s", name)
	}
}

// Resolve returns the script registered for name.
func (m *Manager) Resolve(name string) (*Script, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scripts[strings.ToLower(name)]
	return s, ok
}

// Handler wraps a resolved script as a command handler. Scripts carry no
// scope; anyone may run them.
func (m *Manager) Handler(name string) (commands.Handler, bool) {
	s, ok := m.Resolve(name)
	if !ok {
		return nil, false
	}
	return &scriptHandler{script: s}, true
}

type scriptHandler struct {
	script *Script
}

func (h *scriptHandler) Scope() auth.Scope { return "" }

func (h *scriptHandler) Handle(ctx context.Context, cmd *commands.Context) error {
	out, err := h.script.Call(cmd.Login, cmd.Rest())
	if err != nil {
		return err
	}
	if out != "" {
		cmd.Respond("%s", out)
	}
	return nil
}

func commandName(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".lua") {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(base, ".lua"))
}
