package settings

import (
	"context"
	"testing"
)

func TestGetSetDefaults(t *testing.T) {
	s, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := s.Bool(KeyBadWordsEnabled, false); got {
		t.Error("unset bool should fall back to default")
	}
	if got := s.String(KeyLeaveMessage, "bye"); got != "bye" {
		t.Errorf("unset string default: got %q", got)
	}

	if err := s.Set(context.Background(), KeyBadWordsEnabled, "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !s.Bool(KeyBadWordsEnabled, false) {
		t.Error("expected bad words enabled after Set")
	}
}

func TestStreamDeliversReplacements(t *testing.T) {
	s, _ := Load(context.Background(), nil)

	ch, unsubscribe := s.Stream(KeyWhitelistedHosts)
	defer unsubscribe()

	s.Set(context.Background(), KeyWhitelistedHosts, "a.com")
	s.Set(context.Background(), KeyWhitelistedHosts, "a.com,b.com")

	// Both replacements arrive in order; a consumer that always keeps the
	// last delivery ends up with the final snapshot.
	first := <-ch
	second := <-ch
	if first != "a.com" || second != "a.com,b.com" {
		t.Errorf("unexpected stream values: %q, %q", first, second)
	}

	set := ParseStringSet(second)
	if len(set) != 2 {
		t.Errorf("expected 2 hosts, got %v", set)
	}
	if _, ok := set["b.com"]; !ok {
		t.Error("expected b.com in parsed set")
	}
}

func TestSetRacesUnsubscribe(t *testing.T) {
	s, _ := Load(context.Background(), nil)

	// Set delivers to subscriber channels outside the lock, so an
	// unsubscribe landing mid-publish must not blow up the sender.
	for i := 0; i < 200; i++ {
		_, unsubscribe := s.Stream(KeyAPIURL)
		done := make(chan struct{})
		go func() {
			for j := 0; j < 5; j++ {
				s.Set(context.Background(), KeyAPIURL, "v")
			}
			close(done)
		}()
		unsubscribe()
		<-done
	}
}

func TestStringSetTrimsAndDropsEmpty(t *testing.T) {
	s, _ := Load(context.Background(), nil)
	s.Set(context.Background(), KeyWhitelistedHosts, " a.com , , b.com,")

	set := s.StringSet(KeyWhitelistedHosts)
	if len(set) != 2 {
		t.Errorf("expected 2 entries, got %v", set)
	}
}
