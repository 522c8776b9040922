package commands

import (
	"context"

	"steelbot/internal/usecase/aliases"
	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/words"
)

// CommandAdmin is the !command handler managing the template-command table.
type CommandAdmin struct {
	Store *Store
}

func (h *CommandAdmin) Scope() auth.Scope { return auth.ScopeCommandEdit }

func (h *CommandAdmin) Handle(ctx context.Context, cmd *Context) error {
	sub, ok := cmd.Next()
	if !ok {
		return Errorf("expected: show, list, edit, or delete")
	}

	switch sub {
	case "show":
		name, ok := cmd.Next()
		if !ok {
			return Errorf("expected: show <name>")
		}
		spec, ok := h.Store.Get(name)
		if !ok {
			return Errorf("no such command: %s", name)
		}
		cmd.Respond("%s (used %d times): %s", spec.Name, spec.Count, spec.Template)
	case "list":
		cmd.RespondLines(h.Store.List(), "no commands registered")
	case "edit":
		name, ok := cmd.Next()
		if !ok {
			return Errorf("expected: edit <name> <template>")
		}
		if cmd.Rest() == "" {
			return Errorf("expected: edit <name> <template>")
		}
		if err := h.Store.Edit(ctx, name, cmd.Rest()); err != nil {
			return err
		}
		cmd.Respond("Edited command %s.", name)
	case "delete":
		name, ok := cmd.Next()
		if !ok {
			return Errorf("expected: delete <name>")
		}
		deleted, err := h.Store.Delete(ctx, name)
		if err != nil {
			return err
		}
		if !deleted {
			return Errorf("no such command: %s", name)
		}
		cmd.Respond("Deleted command %s.", name)
	default:
		return Errorf("unknown subcommand: %s", sub)
	}
	return nil
}

// AliasAdmin is the !alias handler managing the alias table.
type AliasAdmin struct {
	Store *aliases.Store
}

func (h *AliasAdmin) Scope() auth.Scope { return auth.ScopeAliasEdit }

func (h *AliasAdmin) Handle(ctx context.Context, cmd *Context) error {
	sub, ok := cmd.Next()
	if !ok {
		return Errorf("expected: list, edit, delete, or rename")
	}

	switch sub {
	case "list":
		var names []string
		for _, alias := range h.Store.List() {
			names = append(names, alias.Name)
		}
		cmd.RespondLines(names, "no aliases registered")
	case "edit":
		name, ok := cmd.Next()
		if !ok {
			return Errorf("expected: edit <name> <template>")
		}
		if cmd.Rest() == "" {
			return Errorf("expected: edit <name> <template>")
		}
		if err := h.Store.Edit(ctx, name, cmd.Rest()); err != nil {
			return err
		}
		cmd.Respond("Edited alias %s.", name)
	case "delete":
		name, ok := cmd.Next()
		if !ok {
			return Errorf("expected: delete <name>")
		}
		deleted, err := h.Store.Delete(ctx, name)
		if err != nil {
			return err
		}
		if !deleted {
			return Errorf("no such alias: %s", name)
		}
		cmd.Respond("Deleted alias %s.", name)
	case "rename":
		from, ok := cmd.Next()
		if !ok {
			return Errorf("expected: rename <from> <to>")
		}
		to, ok := cmd.Next()
		if !ok {
			return Errorf("expected: rename <from> <to>")
		}
		if err := h.Store.Rename(ctx, from, to); err != nil {
			return Errorf("cannot rename %s: %s", from, err)
		}
		cmd.Respond("Renamed alias %s to %s.", from, to)
	default:
		return Errorf("unknown subcommand: %s", sub)
	}
	return nil
}

// WordAdmin is the !word handler managing the bad-word denylist.
type WordAdmin struct {
	Store *words.Store
}

func (h *WordAdmin) Scope() auth.Scope { return auth.ScopeWordEdit }

func (h *WordAdmin) Handle(ctx context.Context, cmd *Context) error {
	sub, ok := cmd.Next()
	if !ok {
		return Errorf("expected: edit or delete")
	}

	switch sub {
	case "edit":
		word, ok := cmd.Next()
		if !ok {
			return Errorf("expected: edit <word> [why]")
		}
		if err := h.Store.Edit(ctx, word, cmd.Rest()); err != nil {
			return err
		}
		cmd.Respond("Added bad word.")
	case "delete":
		word, ok := cmd.Next()
		if !ok {
			return Errorf("expected: delete <word>")
		}
		deleted, err := h.Store.Delete(ctx, word)
		if err != nil {
			return err
		}
		if !deleted {
			return Errorf("no such word")
		}
		cmd.Respond("Deleted bad word.")
	default:
		return Errorf("unknown subcommand: %s", sub)
	}
	return nil
}
