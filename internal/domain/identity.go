package domain

type Platform string

const PlatformTwitch Platform = "twitch"

// Identity is a resolved Twitch account, either the bot or the streamer.
type Identity struct {
	ID          string
	Login       string
	DisplayName string
}
