package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"steelbot/internal/domain"
)

func (s *Store) Get(ctx context.Context, platform domain.Platform, role string) (*domain.Credential, error) {
	const query = `
SELECT access_token, refresh_token, expires_at, updated_at, metadata
FROM credentials
WHERE platform = ? AND role = ?
LIMIT 1;
`

	row := s.db.QueryRowContext(ctx, query, string(platform), role)

	var accessToken, refreshToken, metadata sql.NullString
	var expiresAt, updatedAt sql.NullTime

	if err := row.Scan(&accessToken, &refreshToken, &expiresAt, &updatedAt, &metadata); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get credential: %w", err)
	}

	return &domain.Credential{
		Platform:     platform,
		Role:         role,
		AccessToken:  accessToken.String,
		RefreshToken: refreshToken.String,
		ExpiresAt:    expiresAt.Time,
		UpdatedAt:    updatedAt.Time,
		Metadata:     decodeMetadata(metadata.String),
	}, nil
}

func (s *Store) Save(ctx context.Context, cred *domain.Credential) error {
	if cred == nil {
		return fmt.Errorf("sqlite: credential nil")
	}

	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = time.Now().UTC()
	}

	const stmt = `
INSERT INTO credentials (platform, role, access_token, refresh_token, expires_at, updated_at, metadata)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(platform, role) DO UPDATE SET
	access_token=excluded.access_token,
	refresh_token=excluded.refresh_token,
	expires_at=excluded.expires_at,
	updated_at=excluded.updated_at,
	metadata=excluded.metadata;
`

	_, err := s.db.ExecContext(
		ctx,
		stmt,
		string(cred.Platform),
		cred.Role,
		cred.AccessToken,
		cred.RefreshToken,
		nullTime(cred.ExpiresAt),
		cred.UpdatedAt,
		encodeMetadata(cred.Metadata),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save credential: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Credential, error) {
	const query = `
SELECT platform, role, access_token, refresh_token, expires_at, updated_at, metadata
FROM credentials;
`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list credentials: %w", err)
	}
	defer rows.Close()

	var out []*domain.Credential
	for rows.Next() {
		var platform, role string
		var accessToken, refreshToken, metadata sql.NullString
		var expiresAt, updatedAt sql.NullTime
		if err := rows.Scan(&platform, &role, &accessToken, &refreshToken, &expiresAt, &updatedAt, &metadata); err != nil {
			return nil, fmt.Errorf("sqlite: scan credential: %w", err)
		}

		out = append(out, &domain.Credential{
			Platform:     domain.Platform(platform),
			Role:         role,
			AccessToken:  accessToken.String,
			RefreshToken: refreshToken.String,
			ExpiresAt:    expiresAt.Time,
			UpdatedAt:    updatedAt.Time,
			Metadata:     decodeMetadata(metadata.String),
		})
	}
	return out, rows.Err()
}

func decodeMetadata(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func encodeMetadata(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(b)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
