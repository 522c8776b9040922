package aliases

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func buildStore(t *testing.T, defs map[string]string) *Store {
	t.Helper()
	s, err := Load(context.Background(), nil, "#setbac")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for name, tmpl := range defs {
		if err := s.Edit(context.Background(), name, tmpl); err != nil {
			t.Fatalf("edit %s: %v", name, err)
		}
	}
	return s
}

func TestResolveRendersRest(t *testing.T) {
	s := buildStore(t, map[string]string{
		"!sr": "!song request {{.Rest}}",
	})

	name, out, ok := s.Snapshot().Resolve("!SR never gonna give you up")
	if !ok {
		t.Fatal("expected a match")
	}
	if name != "!sr" {
		t.Errorf("name = %q", name)
	}
	if out != "!song request never gonna give you up" {
		t.Errorf("out = %q", out)
	}
}

func TestResolveNoMatchLeavesMessage(t *testing.T) {
	s := buildStore(t, map[string]string{"!sr": "!song request {{.Rest}}"})

	if _, _, ok := s.Snapshot().Resolve("hello chat"); ok {
		t.Fatal("unexpected match")
	}
}

func TestExpandAllChainTerminates(t *testing.T) {
	s := buildStore(t, map[string]string{
		"!a": "!b {{.Rest}}",
		"!b": "!c {{.Rest}}",
		"!c": "done {{.Rest}}",
	})

	out, path, err := s.Snapshot().ExpandAll("!a payload")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if out != "done payload" {
		t.Errorf("out = %q", out)
	}
	want := []string{"!a", "!b", "!c"}
	if len(path) != len(want) {
		t.Fatalf("path = %v", path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v", path)
		}
	}
}

func TestExpandAllDetectsCycle(t *testing.T) {
	s := buildStore(t, map[string]string{
		"!a": "!b {{.Rest}}",
		"!b": "!a {{.Rest}}",
	})

	_, _, err := s.Snapshot().ExpandAll("!a hi")
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v", err)
	}
	if got := strings.Join(cycle.Path, " -> "); got != "!a -> !b -> !a" {
		t.Errorf("path = %q", got)
	}
	first := cycle.Path[0]
	last := cycle.Path[len(cycle.Path)-1]
	if first != last {
		t.Errorf("repeated name should bound the path: %v", cycle.Path)
	}
}

func TestExpandAllSelfCycle(t *testing.T) {
	s := buildStore(t, map[string]string{"!loop": "!loop again"})

	_, _, err := s.Snapshot().ExpandAll("!loop")
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v", err)
	}
	if got := strings.Join(cycle.Path, " -> "); got != "!loop -> !loop" {
		t.Errorf("path = %q", got)
	}
}

func TestDeleteStopsExpansion(t *testing.T) {
	s := buildStore(t, map[string]string{"!sr": "!song request {{.Rest}}"})

	ok, err := s.Delete(context.Background(), "!SR")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if _, _, matched := s.Snapshot().Resolve("!sr hi"); matched {
		t.Fatal("deleted alias still resolves")
	}
}

func TestSubscribeSeesEdits(t *testing.T) {
	s := buildStore(t, nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	if err := s.Edit(context.Background(), "!hi", "hello {{.Rest}}"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	select {
	case snap := <-ch:
		if _, _, ok := snap.Resolve("!hi there"); !ok {
			t.Fatal("snapshot missing new alias")
		}
	default:
		t.Fatal("no snapshot published")
	}
}

func TestEditRacesUnsubscribe(t *testing.T) {
	s := buildStore(t, nil)

	// publish snapshots the subscriber set and sends outside the lock, so
	// an unsubscribe landing mid-publish must not blow up the sender
	for i := 0; i < 200; i++ {
		_, cancel := s.Subscribe()
		done := make(chan struct{})
		go func() {
			for j := 0; j < 5; j++ {
				s.Edit(context.Background(), "!hi", "hello {{.Rest}}")
			}
			close(done)
		}()
		cancel()
		<-done
	}
}

func TestSplitFirst(t *testing.T) {
	cases := []struct {
		in    string
		first string
		rest  string
	}{
		{"!sr song name", "!sr", "song name"},
		{"  !sr   song ", "!sr", "song"},
		{"!sr", "!sr", ""},
		{"", "", ""},
		{"   ", "", ""},
	}
	for _, c := range cases {
		first, rest := SplitFirst(c.in)
		if first != c.first || rest != c.rest {
			t.Errorf("SplitFirst(%q) = %q, %q", c.in, first, rest)
		}
	}
}
