package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
)

type settingsService struct {
	settings repository.SettingsRepo
	contexts repository.ContextRepo
	observer UseCaseObserver
}

func NewSettingsService(settings repository.SettingsRepo, contexts repository.ContextRepo, observers ...UseCaseObserver) SettingsService {
	return &settingsService{settings: settings, contexts: contexts, observer: useCaseObserverOrNoop(observers)}
}

// loadSettings returns the stored row or the defaults when there is none.
func loadSettings(ctx context.Context, repo repository.SettingsRepo, ownerID string) (*domain.UserSettings, error) {
	s, err := repo.Get(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.DefaultUserSettings(ownerID), nil
	}
	return s, err
}

func (s *settingsService) Get(ctx context.Context, ownerID string) (*domain.UserSettings, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return loadSettings(ctx, s.settings, ownerID)
}

func (s *settingsService) SetDefinitions(ctx context.Context, ownerID, definitions string) (out *domain.UserSettings, err error) {
	defer observe(ctx, s.observer, "settings.definitions", time.Now(), &err, map[string]any{"owner": ownerID})

	return s.modify(ctx, ownerID, func(us *domain.UserSettings) error {
		us.Definitions = strings.TrimSpace(definitions)
		return nil
	})
}

func (s *settingsService) ResetDefinitions(ctx context.Context, ownerID string) (*domain.UserSettings, error) {
	return s.SetDefinitions(ctx, ownerID, domain.DefaultDefinitions)
}

func (s *settingsService) SetDefaultContext(ctx context.Context, ownerID, contextID string) (out *domain.UserSettings, err error) {
	defer observe(ctx, s.observer, "settings.default_context", time.Now(), &err, map[string]any{"owner": ownerID, "context": contextID})

	return s.modify(ctx, ownerID, func(us *domain.UserSettings) error {
		if contextID == "" {
			us.DefaultContextID = nil
			return nil
		}
		if _, err := s.contexts.GetByID(ctx, ownerID, contextID); err != nil {
			return err
		}
		us.DefaultContextID = &contextID
		return nil
	})
}

func (s *settingsService) modify(ctx context.Context, ownerID string, fn func(*domain.UserSettings) error) (*domain.UserSettings, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	us, err := loadSettings(ctx, s.settings, ownerID)
	if err != nil {
		return nil, err
	}
	if err := fn(us); err != nil {
		return nil, err
	}
	us.UpdatedAt = time.Now().UTC()
	if err := s.settings.Upsert(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}
