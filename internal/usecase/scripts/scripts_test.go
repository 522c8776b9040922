package scripts

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLoadDirAndCall(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "greet.lua", `
function handler(user, rest)
  return "hello " .. user
end
`)

	m := NewManager(dir)
	if err := m.LoadDir(); err != nil {
		t.Fatalf("load dir: %v", err)
	}

	s, ok := m.Resolve("greet")
	if !ok {
		t.Fatal("greet not loaded")
	}
	out, err := s.Call("viewer", "")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != "hello viewer" {
		t.Errorf("out = %q", out)
	}
}

func TestReloadReplaces(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "echo.lua", `
function handler(user, rest)
  return "one"
end
`)

	m := NewManager(dir)
	if err := m.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}

	writeScript(t, dir, "echo.lua", `
function handler(user, rest)
  return "two"
end
`)
	if err := m.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}

	s, _ := m.Resolve("echo")
	out, err := s.Call("viewer", "")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out != "two" {
		t.Errorf("out = %q", out)
	}
}

func TestUnload(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "gone.lua", `
function handler(user, rest)
  return ""
end
`)

	m := NewManager(dir)
	if err := m.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	m.Unload(path)
	if _, ok := m.Resolve("gone"); ok {
		t.Fatal("script still resolvable after unload")
	}
}

func TestBrokenScriptDoesNotLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "broken.lua", `this is not lua ((`)

	m := NewManager(dir)
	if err := m.Reload(path); err == nil {
		t.Fatal("expected load error")
	}
	if _, ok := m.Resolve("broken"); ok {
		t.Fatal("broken script resolvable")
	}
}

func TestMissingHandlerFunction(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "plain.lua", `x = 1`)

	m := NewManager(dir)
	if err := m.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	s, _ := m.Resolve("plain")
	if _, err := s.Call("viewer", ""); err == nil {
		t.Fatal("expected handler error")
	}
}
