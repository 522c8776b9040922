package irc

// Tags is the typed view of the message tags the engine cares about. A nil
// field means the tag was absent from the line; Twitch omits tags freely so
// absence must stay distinguishable from an empty value.
type Tags struct {
	ID          *string
	MsgID       *string
	DisplayName *string
	UserID      *string
	Color       *string
	Emotes      *string
	TargetMsgID *string
}

func TagsFrom(raw map[string]string) Tags {
	var t Tags
	if raw == nil {
		return t
	}
	t.ID = tagValue(raw, "id")
	t.MsgID = tagValue(raw, "msg-id")
	t.DisplayName = tagValue(raw, "display-name")
	t.UserID = tagValue(raw, "user-id")
	t.Color = tagValue(raw, "color")
	t.Emotes = tagValue(raw, "emotes")
	t.TargetMsgID = tagValue(raw, "target-msg-id")
	return t
}

func tagValue(raw map[string]string, key string) *string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	return &v
}

// DisplayNameOr returns the display-name tag, falling back to the given
// login when the tag is absent.
func (t Tags) DisplayNameOr(login string) string {
	if t.DisplayName != nil && *t.DisplayName != "" {
		return *t.DisplayName
	}
	return login
}
