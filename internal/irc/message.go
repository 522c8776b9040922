// Package irc implements the subset of the IRC wire protocol spoken by
// Twitch chat: IRCv3 message tags, capability negotiation and the usual
// PRIVMSG/PING/NOTICE command set.
package irc

import (
	"fmt"
	"strings"
)

// Message is a single parsed protocol line.
type Message struct {
	Raw     string
	RawTags map[string]string
	Prefix  string
	Command string
	Params  []string
}

// ParseMessage parses a raw line of the form
//
//	[@key=value;key2=value2 ][:prefix ]COMMAND [params] [:trailing]
//
// Tag values are unescaped per the IRCv3 message-tags spec. A tag present
// without a value is kept with an empty value; an absent tag is simply not
// in the map, which is not the same thing.
func ParseMessage(line string) (Message, error) {
	m := Message{Raw: line}
	rest := strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(rest, "@") {
		i := strings.IndexByte(rest, ' ')
		if i < 0 {
			return m, fmt.Errorf("irc: tags without command: %q", line)
		}
		m.RawTags = parseTags(rest[1:i])
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, ":") {
		i := strings.IndexByte(rest, ' ')
		if i < 0 {
			return m, fmt.Errorf("irc: prefix without command: %q", line)
		}
		m.Prefix = rest[1:i]
		rest = rest[i+1:]
	}

	if rest == "" {
		return m, fmt.Errorf("irc: empty command: %q", line)
	}

	if i := strings.Index(rest, " :"); i >= 0 {
		trailing := rest[i+2:]
		m.Params = strings.Fields(rest[:i])
		m.Params = append(m.Params, trailing)
	} else {
		m.Params = strings.Fields(rest)
	}

	m.Command = strings.ToUpper(m.Params[0])
	m.Params = m.Params[1:]
	return m, nil
}

// Nick extracts the sender nickname from the message prefix
// ("nick!user@host" or just "nick").
func (m Message) Nick() string {
	if m.Prefix == "" {
		return ""
	}
	if i := strings.IndexByte(m.Prefix, '!'); i >= 0 {
		return m.Prefix[:i]
	}
	if i := strings.IndexByte(m.Prefix, '@'); i >= 0 {
		return m.Prefix[:i]
	}
	return m.Prefix
}

// Trailing returns the last parameter, usually the message text.
func (m Message) Trailing() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

func parseTags(s string) map[string]string {
	tags := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			tags[key] = ""
			continue
		}
		tags[key] = unescapeTagValue(value)
	}
	return tags
}

func unescapeTagValue(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case ':':
			b.WriteByte(';')
		case 's':
			b.WriteByte(' ')
		case '\\':
			b.WriteByte('\\')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
