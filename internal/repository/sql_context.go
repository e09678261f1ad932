package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/homilybuild/homily/internal/db"
	"github.com/homilybuild/homily/internal/domain"
)

// SQLContextRepo implements ContextRepo.
type SQLContextRepo struct {
	db db.DBTX
}

func NewSQLContextRepo(conn db.DBTX) *SQLContextRepo {
	return &SQLContextRepo{db: conn}
}

const contextColumns = `id, owner_id, name, content, created_at, updated_at`

func (r *SQLContextRepo) Create(ctx context.Context, c *domain.PreachingContext) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contexts (`+contextColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Content, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting context: %w", err)
	}
	return nil
}

func (r *SQLContextRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.PreachingContext, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contextColumns+` FROM contexts WHERE id = ? AND owner_id = ?`, id, ownerID)
	c, err := scanContext(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("context %s: %w", id, ErrNotFound)
	}
	return c, err
}

// List returns the owner's contexts, newest first.
func (r *SQLContextRepo) List(ctx context.Context, ownerID string) ([]*domain.PreachingContext, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contextColumns+` FROM contexts WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing contexts: %w", err)
	}
	defer rows.Close()

	var out []*domain.PreachingContext
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contexts: %w", err)
	}
	return out, nil
}

func (r *SQLContextRepo) Update(ctx context.Context, c *domain.PreachingContext) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contexts SET name = ?, content = ?, updated_at = ? WHERE id = ? AND owner_id = ?`,
		c.Name, c.Content, formatTime(c.UpdatedAt), c.ID, c.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating context: %w", err)
	}
	return checkAffected(res, "updating context "+c.ID)
}

func (r *SQLContextRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contexts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting context: %w", err)
	}
	return checkAffected(res, "deleting context "+id)
}

func scanContext(row rowScanner) (*domain.PreachingContext, error) {
	var c domain.PreachingContext
	var createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Content, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning context: %w", err)
	}
	var err error
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
