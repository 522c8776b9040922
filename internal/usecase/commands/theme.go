package commands

import (
	"context"

	"steelbot/internal/domain"
	"steelbot/internal/usecase/auth"
)

// ThemeAdmin is the !theme handler managing named song themes.
type ThemeAdmin struct {
	Repo domain.ThemeRepository
}

func (h *ThemeAdmin) Scope() auth.Scope { return auth.ScopeThemeEdit }

func (h *ThemeAdmin) Handle(ctx context.Context, cmd *Context) error {
	sub, ok := cmd.Next()
	if !ok {
		return Errorf("expected: list, edit, or delete")
	}

	switch sub {
	case "list":
		themes, err := h.Repo.ListThemes(ctx, cmd.Channel)
		if err != nil {
			return err
		}
		var names []string
		for _, theme := range themes {
			names = append(names, theme.Name)
		}
		cmd.RespondLines(names, "no themes registered")
	case "edit":
		name, ok := cmd.Next()
		if !ok {
			return Errorf("expected: edit <name> <track>")
		}
		track, ok := cmd.Next()
		if !ok {
			return Errorf("expected: edit <name> <track>")
		}
		theme := &domain.Theme{Channel: cmd.Channel, Name: name, TrackID: track}
		if err := h.Repo.UpsertTheme(ctx, theme); err != nil {
			return err
		}
		cmd.Respond("Edited theme %s.", name)
	case "delete":
		name, ok := cmd.Next()
		if !ok {
			return Errorf("expected: delete <name>")
		}
		if err := h.Repo.DeleteTheme(ctx, cmd.Channel, name); err != nil {
			return err
		}
		cmd.Respond("Deleted theme %s.", name)
	default:
		return Errorf("unknown subcommand: %s", sub)
	}
	return nil
}
