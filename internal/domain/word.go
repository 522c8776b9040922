package domain

// Word is a single denylisted word. Why, when set, is a template rendered
// with {{.Name}} and {{.Target}} and sent to chat when the word matches.
type Word struct {
	Word string
	Why  string
}
