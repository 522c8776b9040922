package irc

import (
	"testing"
	"time"
)

func TestParseMessagePrivmsg(t *testing.T) {
	line := "@badge-info=;color=#FF0000;display-name=SomeUser;id=abc-123;user-id=4711 :someuser!someuser@someuser.tmi.twitch.tv PRIVMSG #channel :hello there"

	m, err := ParseMessage(line)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	if m.Command != "PRIVMSG" {
		t.Errorf("expected PRIVMSG, got %s", m.Command)
	}
	if m.Nick() != "someuser" {
		t.Errorf("expected nick someuser, got %s", m.Nick())
	}
	if len(m.Params) != 2 {
		t.Fatalf("expected 2 params, got %v", m.Params)
	}
	if m.Params[0] != "#channel" {
		t.Errorf("expected #channel, got %s", m.Params[0])
	}
	if m.Trailing() != "hello there" {
		t.Errorf("expected trailing text, got %q", m.Trailing())
	}

	tags := TagsFrom(m.RawTags)
	if tags.ID == nil || *tags.ID != "abc-123" {
		t.Errorf("expected id tag abc-123, got %v", tags.ID)
	}
	if tags.DisplayName == nil || *tags.DisplayName != "SomeUser" {
		t.Errorf("expected display-name SomeUser, got %v", tags.DisplayName)
	}
	if tags.UserID == nil || *tags.UserID != "4711" {
		t.Errorf("expected user-id 4711, got %v", tags.UserID)
	}
	if tags.Color == nil || *tags.Color != "#FF0000" {
		t.Errorf("expected color tag, got %v", tags.Color)
	}
}

func TestParseMessageAbsentTagsStayAbsent(t *testing.T) {
	m, err := ParseMessage("@msg-id=room_mods :tmi.twitch.tv NOTICE #channel :The moderators of this channel are: foo")
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}

	tags := TagsFrom(m.RawTags)
	if tags.MsgID == nil || *tags.MsgID != "room_mods" {
		t.Errorf("expected msg-id room_mods, got %v", tags.MsgID)
	}
	// Absent tags must be nil, not empty strings.
	if tags.ID != nil {
		t.Errorf("expected nil id tag, got %q", *tags.ID)
	}
	if tags.DisplayName != nil {
		t.Errorf("expected nil display-name tag, got %q", *tags.DisplayName)
	}

	// A tag present with an empty value is present.
	m, err = ParseMessage("@color=;id=x :tmi.twitch.tv NOTICE #channel :hi")
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}
	tags = TagsFrom(m.RawTags)
	if tags.Color == nil || *tags.Color != "" {
		t.Errorf("expected present-but-empty color tag, got %v", tags.Color)
	}
}

func TestParseMessageNoTagsNoPrefix(t *testing.T) {
	m, err := ParseMessage("PING :tmi.twitch.tv")
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}
	if m.Command != "PING" {
		t.Errorf("expected PING, got %s", m.Command)
	}
	if m.Trailing() != "tmi.twitch.tv" {
		t.Errorf("expected tmi.twitch.tv, got %q", m.Trailing())
	}
	if m.RawTags != nil {
		t.Errorf("expected nil tags, got %v", m.RawTags)
	}
}

func TestParseMessageCapAck(t *testing.T) {
	m, err := ParseMessage(":tmi.twitch.tv CAP * ACK :twitch.tv/commands")
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}
	if m.Command != "CAP" {
		t.Errorf("expected CAP, got %s", m.Command)
	}
	want := []string{"*", "ACK", "twitch.tv/commands"}
	if len(m.Params) != len(want) {
		t.Fatalf("expected %v, got %v", want, m.Params)
	}
	for i := range want {
		if m.Params[i] != want[i] {
			t.Errorf("param %d: expected %q, got %q", i, want[i], m.Params[i])
		}
	}
}

func TestUnescapeTagValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`with\sspace`, "with space"},
		{`semi\:colon`, "semi;colon"},
		{`back\\slash`, `back\slash`},
		{`line\nbreak`, "line\nbreak"},
		{`trailing\`, "trailing"},
		{`unknown\x`, "unknownx"},
	}
	for _, tt := range tests {
		if got := unescapeTagValue(tt.in); got != tt.want {
			t.Errorf("unescapeTagValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFuseFiresWhenNotCleared(t *testing.T) {
	f := NewFuse()
	if f.Armed() {
		t.Fatal("new fuse should not be armed")
	}
	if f.C() != nil {
		t.Fatal("unarmed fuse must expose a nil channel")
	}

	f.Arm(10 * time.Millisecond)
	if !f.Armed() {
		t.Fatal("fuse should be armed")
	}

	select {
	case <-f.C():
	case <-time.After(time.Second):
		t.Fatal("armed fuse did not fire")
	}
}

func TestFuseClearDisarms(t *testing.T) {
	f := NewFuse()
	f.Arm(10 * time.Millisecond)
	f.Clear()

	if f.Armed() {
		t.Fatal("cleared fuse should not be armed")
	}

	select {
	case <-f.C():
		t.Fatal("cleared fuse must not fire")
	case <-time.After(50 * time.Millisecond):
	}

	// Re-arming after clear works.
	f.Arm(10 * time.Millisecond)
	select {
	case <-f.C():
	case <-time.After(time.Second):
		t.Fatal("re-armed fuse did not fire")
	}
}
