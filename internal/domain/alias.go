package domain

// Alias rewrites a message whose leading word matches Name. Template is a Go
// template rendered with the remainder of the message as {{.Rest}}.
type Alias struct {
	Channel  string
	Name     string
	Template string
	Disabled bool
}
