package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/homilybuild/homily/internal/db"
	"github.com/homilybuild/homily/internal/domain"
)

// SQLHomilyRepo implements HomilyRepo. Every query is scoped by owner.
type SQLHomilyRepo struct {
	db db.DBTX
}

func NewSQLHomilyRepo(conn db.DBTX) *SQLHomilyRepo {
	return &SQLHomilyRepo{db: conn}
}

const homilyColumns = `id, owner_id, title, description, context, readings, definitions,
	first_questions, second_questions, final_draft, status, created_at, updated_at`

func (r *SQLHomilyRepo) Create(ctx context.Context, h *domain.Homily) error {
	query := `INSERT INTO homilies (` + homilyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		h.ID,
		h.OwnerID,
		h.Title,
		h.Description,
		h.Context,
		h.Readings,
		h.Definitions,
		h.FirstQuestions,
		h.SecondQuestions,
		h.FinalDraft,
		string(h.Status),
		formatTime(h.CreatedAt),
		formatTime(h.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting homily: %w", err)
	}
	return nil
}

func (r *SQLHomilyRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Homily, error) {
	query := `SELECT ` + homilyColumns + ` FROM homilies WHERE id = ? AND owner_id = ?`
	h, err := scanHomily(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("homily %s: %w", id, ErrNotFound)
	}
	return h, err
}

func (r *SQLHomilyRepo) Update(ctx context.Context, h *domain.Homily) error {
	query := `UPDATE homilies SET title = ?, description = ?, context = ?, readings = ?,
		definitions = ?, first_questions = ?, second_questions = ?, final_draft = ?,
		status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		h.Title,
		h.Description,
		h.Context,
		h.Readings,
		h.Definitions,
		h.FirstQuestions,
		h.SecondQuestions,
		h.FinalDraft,
		string(h.Status),
		formatTime(h.UpdatedAt),
		h.ID,
		h.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating homily: %w", err)
	}
	return checkAffected(res, "updating homily "+h.ID)
}

func (r *SQLHomilyRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM homilies WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting homily: %w", err)
	}
	return checkAffected(res, "deleting homily "+id)
}

func (r *SQLHomilyRepo) List(ctx context.Context, ownerID string, params ListParams) ([]*domain.Homily, int, error) {
	p, err := params.Normalize()
	if err != nil {
		return nil, 0, err
	}

	where := `owner_id = ?`
	args := []any{ownerID}
	if p.Search != "" {
		pattern := likePattern(p.Search)
		where += ` AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM homilies WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting homilies: %w", err)
	}

	// SortBy is whitelisted by Normalize.
	query := fmt.Sprintf(`SELECT %s FROM homilies WHERE %s ORDER BY %s %s, id %s LIMIT ? OFFSET ?`,
		homilyColumns, where, p.SortBy, p.SortOrder, p.SortOrder)
	rows, err := r.db.QueryContext(ctx, query, append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing homilies: %w", err)
	}
	defer rows.Close()

	var out []*domain.Homily
	for rows.Next() {
		h, err := scanHomily(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating homilies: %w", err)
	}
	return out, total, nil
}

func (r *SQLHomilyRepo) CountByStatus(ctx context.Context, ownerID string) (map[domain.Status]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM homilies WHERE owner_id = ? GROUP BY status`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("counting homilies by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[domain.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}
	return counts, nil
}

func scanHomily(row rowScanner) (*domain.Homily, error) {
	var h domain.Homily
	var status, createdAt, updatedAt string
	err := row.Scan(
		&h.ID, &h.OwnerID,
		&h.Title, &h.Description, &h.Context, &h.Readings, &h.Definitions,
		&h.FirstQuestions, &h.SecondQuestions, &h.FinalDraft,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning homily: %w", err)
	}
	h.Status = domain.Status(status)
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}
