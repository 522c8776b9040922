package sqlite

import (
	"context"
	"fmt"

	"steelbot/internal/domain"
)

func (s *Store) ListCommands(ctx context.Context, channel string) ([]*domain.CommandSpec, error) {
	const query = `SELECT channel, name, template, count, disabled FROM commands WHERE channel = ?;`

	rows, err := s.db.QueryContext(ctx, query, channel)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list commands: %w", err)
	}
	defer rows.Close()

	var out []*domain.CommandSpec
	for rows.Next() {
		var c domain.CommandSpec
		if err := rows.Scan(&c.Channel, &c.Name, &c.Template, &c.Count, &c.Disabled); err != nil {
			return nil, fmt.Errorf("sqlite: scan command: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *Store) UpsertCommand(ctx context.Context, spec *domain.CommandSpec) error {
	if spec == nil {
		return fmt.Errorf("sqlite: command nil")
	}

	const stmt = `
INSERT INTO commands (channel, name, template, count, disabled)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(channel, name) DO UPDATE SET
	template=excluded.template,
	disabled=excluded.disabled;
`
	if _, err := s.db.ExecContext(ctx, stmt, spec.Channel, spec.Name, spec.Template, spec.Count, spec.Disabled); err != nil {
		return fmt.Errorf("sqlite: upsert command: %w", err)
	}
	return nil
}

func (s *Store) DeleteCommand(ctx context.Context, channel, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM commands WHERE channel = ? AND name = ?;`, channel, name); err != nil {
		return fmt.Errorf("sqlite: delete command: %w", err)
	}
	return nil
}

func (s *Store) IncrementCommandCount(ctx context.Context, channel, name string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE commands SET count = count + 1 WHERE channel = ? AND name = ?;`, channel, name); err != nil {
		return fmt.Errorf("sqlite: increment command count: %w", err)
	}
	return nil
}
