package sqlite

import (
	"context"
	"fmt"

	"steelbot/internal/domain"
)

func (s *Store) ListAliases(ctx context.Context, channel string) ([]*domain.Alias, error) {
	const query = `SELECT channel, name, template, disabled FROM aliases WHERE channel = ?;`

	rows, err := s.db.QueryContext(ctx, query, channel)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list aliases: %w", err)
	}
	defer rows.Close()

	var out []*domain.Alias
	for rows.Next() {
		var a domain.Alias
		if err := rows.Scan(&a.Channel, &a.Name, &a.Template, &a.Disabled); err != nil {
			return nil, fmt.Errorf("sqlite: scan alias: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *Store) UpsertAlias(ctx context.Context, alias *domain.Alias) error {
	if alias == nil {
		return fmt.Errorf("sqlite: alias nil")
	}

	const stmt = `
INSERT INTO aliases (channel, name, template, disabled)
VALUES (?, ?, ?, ?)
ON CONFLICT(channel, name) DO UPDATE SET
	template=excluded.template,
	disabled=excluded.disabled;
`
	if _, err := s.db.ExecContext(ctx, stmt, alias.Channel, alias.Name, alias.Template, alias.Disabled); err != nil {
		return fmt.Errorf("sqlite: upsert alias: %w", err)
	}
	return nil
}

func (s *Store) DeleteAlias(ctx context.Context, channel, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM aliases WHERE channel = ? AND name = ?;`, channel, name); err != nil {
		return fmt.Errorf("sqlite: delete alias: %w", err)
	}
	return nil
}

func (s *Store) RenameAlias(ctx context.Context, channel, from, to string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE aliases SET name = ? WHERE channel = ? AND name = ?;`, to, channel, from); err != nil {
		return fmt.Errorf("sqlite: rename alias: %w", err)
	}
	return nil
}
