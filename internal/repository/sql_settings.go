package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/homilybuild/homily/internal/db"
	"github.com/homilybuild/homily/internal/domain"
)

// SQLSettingsRepo implements SettingsRepo with one row per owner.
type SQLSettingsRepo struct {
	db db.DBTX
}

func NewSQLSettingsRepo(conn db.DBTX) *SQLSettingsRepo {
	return &SQLSettingsRepo{db: conn}
}

func (r *SQLSettingsRepo) Get(ctx context.Context, ownerID string) (*domain.UserSettings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT owner_id, definitions, default_context_id, updated_at FROM user_settings WHERE owner_id = ?`, ownerID)

	var s domain.UserSettings
	var definitions, contextID sql.NullString
	var updatedAt string
	if err := row.Scan(&s.OwnerID, &definitions, &contextID, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings for %s: %w", ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning settings: %w", err)
	}
	s.Definitions = definitions.String
	s.DefaultContextID = stringPtr(contextID)

	var err error
	if s.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLSettingsRepo) Upsert(ctx context.Context, s *domain.UserSettings) error {
	query := `INSERT INTO user_settings (owner_id, definitions, default_context_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			definitions = excluded.definitions,
			default_context_id = excluded.default_context_id,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		s.OwnerID,
		nullIfBlank(s.Definitions),
		nullableString(s.DefaultContextID),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting settings: %w", err)
	}
	return nil
}
