package events

import "time"

// RawCommandDTO is an injected command published on TopicRawCommand.
type RawCommandDTO struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// NotificationDTO is a user-visible bot event.
type NotificationDTO struct {
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

func NewNotificationDTO(kind, text string) NotificationDTO {
	return NotificationDTO{
		Kind:      kind,
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}
