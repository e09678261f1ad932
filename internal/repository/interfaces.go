package repository

import (
	"context"
	"errors"

	"github.com/homilybuild/homily/internal/domain"
)

// ErrNotFound is returned when a row does not exist for the given owner.
var ErrNotFound = errors.New("not found")

type HomilyRepo interface {
	Create(ctx context.Context, h *domain.Homily) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Homily, error)
	Update(ctx context.Context, h *domain.Homily) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string, params ListParams) ([]*domain.Homily, int, error)
	CountByStatus(ctx context.Context, ownerID string) (map[domain.Status]int, error)
}

type ContextRepo interface {
	Create(ctx context.Context, c *domain.PreachingContext) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.PreachingContext, error)
	List(ctx context.Context, ownerID string) ([]*domain.PreachingContext, error)
	Update(ctx context.Context, c *domain.PreachingContext) error
	Delete(ctx context.Context, ownerID, id string) error
}

type SettingsRepo interface {
	Get(ctx context.Context, ownerID string) (*domain.UserSettings, error)
	Upsert(ctx context.Context, s *domain.UserSettings) error
}
