package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"steelbot/internal/domain"
)

func (s *Store) ListWords(ctx context.Context) ([]*domain.Word, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word, why FROM bad_words;`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list words: %w", err)
	}
	defer rows.Close()

	var out []*domain.Word
	for rows.Next() {
		var w domain.Word
		var why sql.NullString
		if err := rows.Scan(&w.Word, &why); err != nil {
			return nil, fmt.Errorf("sqlite: scan word: %w", err)
		}
		w.Why = why.String
		out = append(out, &w)
	}
	return out, rows.Err()
}

func (s *Store) UpsertWord(ctx context.Context, word *domain.Word) error {
	if word == nil {
		return fmt.Errorf("sqlite: word nil")
	}
	const stmt = `
INSERT INTO bad_words (word, why) VALUES (?, ?)
ON CONFLICT(word) DO UPDATE SET why=excluded.why;
`
	if _, err := s.db.ExecContext(ctx, stmt, word.Word, word.Why); err != nil {
		return fmt.Errorf("sqlite: upsert word: %w", err)
	}
	return nil
}

func (s *Store) DeleteWord(ctx context.Context, word string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bad_words WHERE word = ?;`, word); err != nil {
		return fmt.Errorf("sqlite: delete word: %w", err)
	}
	return nil
}

func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings;`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("sqlite: scan setting: %w", err)
		}
		out[key] = value.String
	}
	return out, rows.Err()
}

func (s *Store) SaveSetting(ctx context.Context, key, value string) error {
	const stmt = `
INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlite: save setting: %w", err)
	}
	return nil
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("sqlite: delete setting: %w", err)
	}
	return nil
}

func (s *Store) BalanceOf(ctx context.Context, channel, user string) (int64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT amount FROM balances WHERE channel = ? AND user = ?;`, channel, user)
	var amount int64
	if err := row.Scan(&amount); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("sqlite: balance of %s: %w", user, err)
	}
	return amount, nil
}

func (s *Store) AddBalance(ctx context.Context, channel, user string, amount int64) error {
	const stmt = `
INSERT INTO balances (channel, user, amount) VALUES (?, ?, ?)
ON CONFLICT(channel, user) DO UPDATE SET amount = amount + excluded.amount;
`
	if _, err := s.db.ExecContext(ctx, stmt, channel, user, amount); err != nil {
		return fmt.Errorf("sqlite: add balance: %w", err)
	}
	return nil
}

func (s *Store) TransferBalance(ctx context.Context, channel, from, to string, amount int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: transfer begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT amount FROM balances WHERE channel = ? AND user = ?;`, channel, from)
	var have int64
	if err := row.Scan(&have); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: transfer balance: %w", err)
	}
	if have < amount {
		return fmt.Errorf("sqlite: insufficient balance: have %d, need %d", have, amount)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE balances SET amount = amount - ? WHERE channel = ? AND user = ?;`, amount, channel, from); err != nil {
		return fmt.Errorf("sqlite: transfer debit: %w", err)
	}
	const credit = `
INSERT INTO balances (channel, user, amount) VALUES (?, ?, ?)
ON CONFLICT(channel, user) DO UPDATE SET amount = amount + excluded.amount;
`
	if _, err := tx.ExecContext(ctx, credit, channel, to, amount); err != nil {
		return fmt.Errorf("sqlite: transfer credit: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ListThemes(ctx context.Context, channel string) ([]*domain.Theme, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT channel, name, track_id FROM themes WHERE channel = ?;`, channel)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list themes: %w", err)
	}
	defer rows.Close()

	var out []*domain.Theme
	for rows.Next() {
		var t domain.Theme
		if err := rows.Scan(&t.Channel, &t.Name, &t.TrackID); err != nil {
			return nil, fmt.Errorf("sqlite: scan theme: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *Store) UpsertTheme(ctx context.Context, theme *domain.Theme) error {
	if theme == nil {
		return fmt.Errorf("sqlite: theme nil")
	}
	const stmt = `
INSERT INTO themes (channel, name, track_id) VALUES (?, ?, ?)
ON CONFLICT(channel, name) DO UPDATE SET track_id=excluded.track_id;
`
	if _, err := s.db.ExecContext(ctx, stmt, theme.Channel, theme.Name, theme.TrackID); err != nil {
		return fmt.Errorf("sqlite: upsert theme: %w", err)
	}
	return nil
}

func (s *Store) DeleteTheme(ctx context.Context, channel, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM themes WHERE channel = ? AND name = ?;`, channel, name); err != nil {
		return fmt.Errorf("sqlite: delete theme: %w", err)
	}
	return nil
}

func (s *Store) AddAfterStream(ctx context.Context, entry *domain.AfterStream) error {
	if entry == nil {
		return fmt.Errorf("sqlite: after stream nil")
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}
	const stmt = `INSERT INTO after_streams (channel, user, text, added_at) VALUES (?, ?, ?, ?);`
	res, err := s.db.ExecContext(ctx, stmt, entry.Channel, entry.User, entry.Text, entry.AddedAt)
	if err != nil {
		return fmt.Errorf("sqlite: add after stream: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

func (s *Store) ListAfterStreams(ctx context.Context, channel string) ([]*domain.AfterStream, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, channel, user, text, added_at FROM after_streams WHERE channel = ? ORDER BY id;`, channel)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list after streams: %w", err)
	}
	defer rows.Close()

	var out []*domain.AfterStream
	for rows.Next() {
		var a domain.AfterStream
		if err := rows.Scan(&a.ID, &a.Channel, &a.User, &a.Text, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan after stream: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAfterStream(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM after_streams WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("sqlite: delete after stream: %w", err)
	}
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, id, channel, user, text string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO chat_log (id, channel, user, text) VALUES (?, ?, ?, ?);`, id, channel, user, text); err != nil {
		return fmt.Errorf("sqlite: insert message: %w", err)
	}
	return nil
}

func (s *Store) DeleteMessageByID(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_log WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("sqlite: delete message by id: %w", err)
	}
	return nil
}

func (s *Store) DeleteMessagesByUser(ctx context.Context, channel, user string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_log WHERE channel = ? AND user = ?;`, channel, user); err != nil {
		return fmt.Errorf("sqlite: delete messages by user: %w", err)
	}
	return nil
}

func (s *Store) DeleteAllMessages(ctx context.Context, channel string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_log WHERE channel = ?;`, channel); err != nil {
		return fmt.Errorf("sqlite: delete all messages: %w", err)
	}
	return nil
}
