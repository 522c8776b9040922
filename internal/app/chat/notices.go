package chat

import "strings"

// Notice msg-ids the engine reacts to.
const (
	noticeNoMods      = "no_mods"
	noticeRoomMods    = "room_mods"
	noticeNoVips      = "no_vips"
	noticeVipsSuccess = "vips_success"
)

const authFailureNotice = "Login authentication failed"

// parseRoomMembers extracts logins from a member-list notice such as
// "The moderators of this channel are: foo, bar." The list follows the
// colon, entries are comma-separated, and a trailing period is dropped.
func parseRoomMembers(text string) []string {
	_, list, ok := strings.Cut(text, ":")
	if !ok {
		return nil
	}

	list = strings.TrimSuffix(strings.TrimSpace(list), ".")
	var out []string
	for _, entry := range strings.Split(list, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
