package domain

// CommandSpec is a table-driven chat command: a leading word that triggers a
// rendered response template. Templates may reference {{.Name}}, {{.Target}},
// {{.Count}} and {{.Rest}}.
type CommandSpec struct {
	Channel  string
	Name     string
	Template string
	Count    int64
	Disabled bool
}
