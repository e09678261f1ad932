package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/homilybuild/homily/internal/domain"
)

// Homily options
type HomilyOption func(*domain.Homily)

func WithOwner(owner string) HomilyOption {
	return func(h *domain.Homily) {
		h.OwnerID = owner
	}
}

func WithDescription(d string) HomilyOption {
	return func(h *domain.Homily) {
		h.Description = d
	}
}

// WithField sets one draft field; the status is re-derived.
func WithField(f domain.Field, v string) HomilyOption {
	return func(h *domain.Homily) {
		_ = h.Set(f, v)
	}
}

func WithCreatedAt(t time.Time) HomilyOption {
	return func(h *domain.Homily) {
		h.CreatedAt = t
		h.UpdatedAt = t
	}
}

// NewTestHomily builds an unsaved homily owned by "owner-1".
func NewTestHomily(title string, opts ...HomilyOption) *domain.Homily {
	now := time.Now().UTC()
	h := &domain.Homily{
		ID:        uuid.New().String(),
		OwnerID:   "owner-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.Title = title
	for _, opt := range opts {
		opt(h)
	}
	h.Refresh()
	return h
}

// Context options
type ContextOption func(*domain.PreachingContext)

func WithContextOwner(owner string) ContextOption {
	return func(c *domain.PreachingContext) {
		c.OwnerID = owner
	}
}

func NewTestContext(name, content string, opts ...ContextOption) *domain.PreachingContext {
	now := time.Now().UTC()
	c := &domain.PreachingContext{
		ID:        uuid.New().String(),
		OwnerID:   "owner-1",
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
