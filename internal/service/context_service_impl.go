package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
)

type contextService struct {
	contexts repository.ContextRepo
	observer UseCaseObserver
}

func NewContextService(contexts repository.ContextRepo, observers ...UseCaseObserver) ContextService {
	return &contextService{contexts: contexts, observer: useCaseObserverOrNoop(observers)}
}

func (s *contextService) Create(ctx context.Context, ownerID, name, content string) (c *domain.PreachingContext, err error) {
	defer observe(ctx, s.observer, "context.create", time.Now(), &err, map[string]any{"owner": ownerID})

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c = &domain.PreachingContext{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.contexts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *contextService) GetByID(ctx context.Context, ownerID, id string) (*domain.PreachingContext, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.contexts.GetByID(ctx, ownerID, id)
}

func (s *contextService) List(ctx context.Context, ownerID string) ([]*domain.PreachingContext, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	list, err := s.contexts.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.PreachingContext{}
	}
	return list, nil
}

func (s *contextService) Update(ctx context.Context, ownerID, id, name, content string) (c *domain.PreachingContext, err error) {
	defer observe(ctx, s.observer, "context.update", time.Now(), &err, map[string]any{"owner": ownerID, "context": id})

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	c, err = s.contexts.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	c.Name, c.Content = name, content
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.contexts.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the context; a settings row pointing at it is cleared by
// the foreign key.
func (s *contextService) Delete(ctx context.Context, ownerID, id string) (err error) {
	defer observe(ctx, s.observer, "context.delete", time.Now(), &err, map[string]any{"owner": ownerID, "context": id})

	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.contexts.Delete(ctx, ownerID, id)
}
