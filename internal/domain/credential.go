package domain

import "time"

type Credential struct {
	Platform     Platform
	Role         string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
	Metadata     map[string]string
}
