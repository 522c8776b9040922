package commands

import (
	"context"
	"strings"
	"testing"

	"steelbot/internal/usecase/auth"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Privmsg(text string)          { f.sent = append(f.sent, text) }
func (f *fakeSender) PrivmsgImmediate(text string) { f.sent = append(f.sent, text) }

func newTestContext(sender *fakeSender, roles []auth.Role, rest string) *Context {
	return NewContext(sender, auth.New(), "#setbac", "viewer", "Viewer", roles, false, rest)
}

func TestContextArgs(t *testing.T) {
	cmd := newTestContext(&fakeSender{}, nil, "edit  !sr   some template text")

	if arg, ok := cmd.Next(); !ok || arg != "edit" {
		t.Fatalf("next = %q, %v", arg, ok)
	}
	if arg, ok := cmd.Next(); !ok || arg != "!sr" {
		t.Fatalf("next = %q, %v", arg, ok)
	}
	if rest := cmd.Rest(); rest != "some template text" {
		t.Errorf("rest = %q", rest)
	}
}

func TestContextRespondAddressesCaller(t *testing.T) {
	sender := &fakeSender{}
	cmd := newTestContext(sender, nil, "")

	cmd.Respond("hello %s", "there")
	if len(sender.sent) != 1 || sender.sent[0] != "Viewer -> hello there" {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestContextRespondLinesSummarizesOverflow(t *testing.T) {
	sender := &fakeSender{}
	cmd := newTestContext(sender, nil, "")

	items := []string{strings.Repeat("a", 300), strings.Repeat("b", 300)}
	cmd.RespondLines(items, "nothing here")
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v", sender.sent)
	}
	if !strings.Contains(sender.sent[0], "1 line(s) not shown") {
		t.Errorf("sent = %q", sender.sent[0])
	}
}

func TestContextRespondLinesEmpty(t *testing.T) {
	sender := &fakeSender{}
	cmd := newTestContext(sender, nil, "")

	cmd.RespondLines(nil, "nothing here")
	if len(sender.sent) != 1 || sender.sent[0] != "Viewer -> nothing here" {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestContextScopes(t *testing.T) {
	cmd := newTestContext(&fakeSender{}, []auth.Role{auth.RoleEveryone}, "")
	if cmd.HasScope(auth.ScopeThemeEdit) {
		t.Error("everyone should not hold theme/edit")
	}
	if !cmd.HasScope(auth.ScopeAfterStream) {
		t.Error("everyone should hold afterstream")
	}

	mod := newTestContext(&fakeSender{}, []auth.Role{auth.RoleModerator}, "")
	if !mod.HasScope(auth.ScopeThemeEdit) {
		t.Error("moderator should hold theme/edit")
	}

	injected := NewContext(&fakeSender{}, auth.New(), "#setbac", "", "", nil, true, "")
	if !injected.HasScope(auth.ScopeThemeEdit) {
		t.Error("injected principal bypasses authorization")
	}
}

func TestStoreResolveRendersAndCounts(t *testing.T) {
	s, err := LoadStore(context.Background(), nil, "#setbac")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Edit(context.Background(), "!hello", "Hi {{.Name}}, seen {{.Count}} times in {{.Target}}"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	snap := s.Snapshot()
	out, ok := snap.Resolve(context.Background(), "!HELLO there", "viewer", "#setbac")
	if !ok {
		t.Fatal("expected a match")
	}
	if out != "Hi viewer, seen 1 times in #setbac" {
		t.Errorf("out = %q", out)
	}

	out, _ = snap.Resolve(context.Background(), "!hello", "viewer", "#setbac")
	if out != "Hi viewer, seen 2 times in #setbac" {
		t.Errorf("out = %q", out)
	}

	if spec, _ := s.Get("!hello"); spec.Count != 2 {
		t.Errorf("count = %d", spec.Count)
	}
}

func TestStoreResolveWithoutCountStaysStill(t *testing.T) {
	s, err := LoadStore(context.Background(), nil, "#setbac")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Edit(context.Background(), "!discord", "Join us: https://discord.gg/setbac"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	snap := s.Snapshot()
	for i := 0; i < 3; i++ {
		if _, ok := snap.Resolve(context.Background(), "!discord", "viewer", "#setbac"); !ok {
			t.Fatal("expected a match")
		}
	}

	if spec, _ := s.Get("!discord"); spec.Count != 0 {
		t.Errorf("count = %d, template never renders it", spec.Count)
	}
}

func TestStoreEditRacesUnsubscribe(t *testing.T) {
	s, err := LoadStore(context.Background(), nil, "#setbac")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// publish snapshots the subscriber set and sends outside the lock, so
	// an unsubscribe landing mid-publish must not blow up the sender
	for i := 0; i < 200; i++ {
		_, cancel := s.Subscribe()
		done := make(chan struct{})
		go func() {
			for j := 0; j < 5; j++ {
				s.Edit(context.Background(), "!v", "value")
			}
			close(done)
		}()
		cancel()
		<-done
	}
}

func TestStoreSecondSnapshotWins(t *testing.T) {
	s, err := LoadStore(context.Background(), nil, "#setbac")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ch, cancel := s.Subscribe()
	defer cancel()

	if err := s.Edit(context.Background(), "!v", "one"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := s.Edit(context.Background(), "!v", "two"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	var last *Snapshot
	for {
		select {
		case snap := <-ch:
			last = snap
			continue
		default:
		}
		break
	}
	if last == nil {
		t.Fatal("no snapshot delivered")
	}
	out, ok := last.Resolve(context.Background(), "!v", "viewer", "#setbac")
	if !ok || out != "two" {
		t.Errorf("out = %q, ok = %v", out, ok)
	}
}

func TestPollCollectsOneVotePerUser(t *testing.T) {
	hooks := NewHooks()
	poll := &Poll{Hooks: hooks}
	sender := &fakeSender{}

	cmd := newTestContext(sender, []auth.Role{auth.RoleModerator}, "run yes no")
	if err := poll.Handle(context.Background(), cmd); err != nil {
		t.Fatalf("run: %v", err)
	}

	hooks.Run("alice", "yes")
	hooks.Run("alice", "yes")
	hooks.Run("bob", "definitely no")
	hooks.Run("carol", "unrelated chatter")

	sender.sent = nil
	closeCmd := newTestContext(sender, []auth.Role{auth.RoleModerator}, "close")
	if err := poll.Handle(context.Background(), closeCmd); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v", sender.sent)
	}
	if !strings.Contains(sender.sent[0], "no = 1") || !strings.Contains(sender.sent[0], "yes = 1") {
		t.Errorf("result = %q", sender.sent[0])
	}
}

func TestHooksRemove(t *testing.T) {
	hooks := NewHooks()
	var calls int
	id := hooks.Register(func(login, text string) { calls++ })

	hooks.Run("a", "x")
	hooks.Remove(id)
	hooks.Run("a", "y")

	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}
