package chat

import (
	"net/url"
	"strings"

	"steelbot/internal/usecase/words"
)

// moderationConfig is the event loop's local snapshot of the moderation
// settings; replaced whole on settings updates.
type moderationConfig struct {
	badWordsEnabled     bool
	urlWhitelistEnabled bool
	whitelistedHosts    map[string]struct{}
}

// verdict is the outcome of the moderation filter for one message.
type verdict struct {
	deleteMessage bool
	response      string
}

// moderate applies the bad-word filter and the URL whitelist. Moderators
// and the streamer are never filtered; bypassURL skips only the URL check.
func moderate(cfg moderationConfig, tester *words.Tester, text, login, target string, moderator, bypassURL bool) verdict {
	if moderator {
		return verdict{}
	}

	if cfg.badWordsEnabled && tester != nil {
		if hit, ok := tester.Test(text, login, target); ok {
			return verdict{deleteMessage: true, response: hit.Why}
		}
	}

	if cfg.urlWhitelistEnabled && !bypassURL {
		for _, host := range messageHosts(text) {
			if _, ok := cfg.whitelistedHosts[host]; !ok {
				return verdict{deleteMessage: true}
			}
		}
	}

	return verdict{}
}

// messageHosts extracts the lowercase host of every URL-looking token.
func messageHosts(text string) []string {
	var hosts []string
	for _, token := range strings.Fields(text) {
		host := tokenHost(token)
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func tokenHost(token string) string {
	token = strings.TrimFunc(token, func(r rune) bool {
		return r == '(' || r == ')' || r == ',' || r == '.' || r == '!' || r == '?'
	})

	switch {
	case strings.Contains(token, "://"):
	case strings.HasPrefix(strings.ToLower(token), "www."):
		token = "https://" + token
	default:
		return ""
	}

	u, err := url.Parse(token)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
