package commands

import "strings"

const (
	// DefaultWidth is the widest line the chat transport accepts comfortably.
	DefaultWidth = 360
	// DefaultSeparator joins items on one line.
	DefaultSeparator = " | "
)

// Partition packs items into lines no wider than width, joined by sep. An
// item wider than an empty line is truncated to width characters total,
// ellipsis included, on a rune boundary.
func Partition(items []string, width int, sep string) []string {
	var lines []string
	var current strings.Builder

	for _, item := range items {
		if item == "" {
			continue
		}

		if current.Len() == 0 {
			if len(item) > width {
				lines = append(lines, truncate(item, width))
				continue
			}
			current.WriteString(item)
			continue
		}

		if current.Len()+len(sep)+len(item) <= width {
			current.WriteString(sep)
			current.WriteString(item)
			continue
		}

		lines = append(lines, current.String())
		current.Reset()
		if len(item) > width {
			lines = append(lines, truncate(item, width))
			continue
		}
		current.WriteString(item)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// truncate cuts s to width bytes including a trailing "...", backing up to
// the nearest rune boundary.
func truncate(s string, width int) string {
	if width <= 3 {
		return "..."[:width]
	}
	cut := width - 3
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
