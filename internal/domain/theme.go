package domain

type Theme struct {
	Channel string
	Name    string
	TrackID string
}
