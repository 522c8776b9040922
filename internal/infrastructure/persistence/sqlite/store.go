// Package sqlite is the persistence layer: a single sqlite database holding
// credentials, aliases, table commands, bad words, settings, currency
// balances, themes, after-stream messages and the chat log.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	platform TEXT NOT NULL,
	role TEXT NOT NULL,
	access_token TEXT NOT NULL,
	refresh_token TEXT,
	expires_at TIMESTAMP,
	updated_at TIMESTAMP NOT NULL,
	metadata TEXT,
	PRIMARY KEY (platform, role)
);

CREATE TABLE IF NOT EXISTS aliases (
	channel TEXT NOT NULL,
	name TEXT NOT NULL,
	template TEXT NOT NULL,
	disabled INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (channel, name)
);

CREATE TABLE IF NOT EXISTS commands (
	channel TEXT NOT NULL,
	name TEXT NOT NULL,
	template TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	disabled INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (channel, name)
);

CREATE TABLE IF NOT EXISTS bad_words (
	word TEXT PRIMARY KEY,
	why TEXT
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
	channel TEXT NOT NULL,
	user TEXT NOT NULL,
	amount INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (channel, user)
);

CREATE TABLE IF NOT EXISTS themes (
	channel TEXT NOT NULL,
	name TEXT NOT NULL,
	track_id TEXT NOT NULL,
	PRIMARY KEY (channel, name)
);

CREATE TABLE IF NOT EXISTS after_streams (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	channel TEXT NOT NULL,
	user TEXT NOT NULL,
	text TEXT NOT NULL,
	added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chat_log (
	id TEXT,
	channel TEXT NOT NULL,
	user TEXT NOT NULL,
	text TEXT NOT NULL,
	logged_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_chat_log_id ON chat_log(id);
CREATE INDEX IF NOT EXISTS idx_chat_log_user ON chat_log(channel, user);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
