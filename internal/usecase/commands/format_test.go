package commands

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPartitionSingleLineIsJoinedInput(t *testing.T) {
	items := []string{"one", "two", "three"}
	lines := Partition(items, DefaultWidth, DefaultSeparator)
	if len(lines) != 1 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != strings.Join(items, DefaultSeparator) {
		t.Errorf("line = %q", lines[0])
	}
}

func TestPartitionWraps(t *testing.T) {
	lines := Partition([]string{"aaaa", "bbbb", "cccc"}, 11, " | ")
	if len(lines) != 3 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != "aaaa | bbbb" {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestPartitionTruncatesOversizeItem(t *testing.T) {
	wide := strings.Repeat("x", 50)
	lines := Partition([]string{wide}, 20, " | ")
	if len(lines) != 1 {
		t.Fatalf("lines = %v", lines)
	}
	if len(lines[0]) != 20 {
		t.Errorf("width = %d, want 20", len(lines[0]))
	}
	if !strings.HasSuffix(lines[0], "...") {
		t.Errorf("line = %q", lines[0])
	}
}

func TestPartitionTruncatesOnRuneBoundary(t *testing.T) {
	wide := strings.Repeat("ä", 50)
	lines := Partition([]string{wide}, 20, " | ")
	if len(lines) != 1 {
		t.Fatalf("lines = %v", lines)
	}
	if !utf8.ValidString(lines[0]) {
		t.Errorf("line is not valid utf8: %q", lines[0])
	}
	if len(lines[0]) > 20 {
		t.Errorf("width = %d", len(lines[0]))
	}
}

func TestPartitionEmpty(t *testing.T) {
	if lines := Partition(nil, 20, " | "); len(lines) != 0 {
		t.Errorf("lines = %v", lines)
	}
}
