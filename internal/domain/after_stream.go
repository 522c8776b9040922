package domain

import "time"

// AfterStream is a message left for the streamer to read after the stream.
type AfterStream struct {
	ID      int64
	Channel string
	User    string
	Text    string
	AddedAt time.Time
}
