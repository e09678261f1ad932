package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homilybuild/homily/internal/db"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
)

// NewHomilyDescription is used when a homily is created without a description.
const NewHomilyDescription = "New homily in progress"

// recentLimit is the number of homilies shown on the dashboard.
const recentLimit = 5

type homilyService struct {
	homilies repository.HomilyRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewHomilyService(homilies repository.HomilyRepo, uow db.UnitOfWork, observers ...UseCaseObserver) HomilyService {
	return &homilyService{
		homilies: homilies,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new homily seeded with the owner's definitions and the
// chosen (or default) context.
func (s *homilyService) Create(ctx context.Context, ownerID string, in CreateHomilyInput) (h *domain.Homily, err error) {
	defer observe(ctx, s.observer, "homily.create", time.Now(), &err, map[string]any{"owner": ownerID})

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: please enter a title for your homily", ErrInvalidInput)
	}

	now := s.now()
	h = &domain.Homily{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.Title = title
	h.Description = domain.CoalesceTrimmed(in.Description, NewHomilyDescription)
	h.Readings = strings.TrimSpace(in.Readings)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		settings, err := loadSettings(ctx, repository.NewSQLSettingsRepo(tx), ownerID)
		if err != nil {
			return err
		}
		h.Definitions = settings.EffectiveDefinitions()

		contextID := in.ContextID
		if contextID == "" && settings.DefaultContextID != nil {
			contextID = *settings.DefaultContextID
		}
		if contextID != "" {
			pc, err := repository.NewSQLContextRepo(tx).GetByID(ctx, ownerID, contextID)
			switch {
			case err == nil:
				h.Context = pc.Content
			case errors.Is(err, repository.ErrNotFound) && in.ContextID == "":
				// stale default; start without context
			default:
				return err
			}
		}

		h.Refresh()
		return repository.NewSQLHomilyRepo(tx).Create(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *homilyService) GetByID(ctx context.Context, ownerID, id string) (*domain.Homily, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.homilies.GetByID(ctx, ownerID, id)
}

// Update applies a partial edit and re-derives the status.
func (s *homilyService) Update(ctx context.Context, ownerID, id string, patch map[domain.Field]string) (h *domain.Homily, err error) {
	defer observe(ctx, s.observer, "homily.update", time.Now(), &err, map[string]any{"owner": ownerID, "homily": id, "fields": len(patch)})

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if v, ok := patch[domain.FieldTitle]; ok && strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLHomilyRepo(tx)
		current, err := repo.GetByID(ctx, ownerID, id)
		if err != nil {
			return err
		}
		for f, v := range patch {
			if err := current.Set(f, v); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
		current.Refresh()
		current.UpdatedAt = s.now()
		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		h = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *homilyService) Delete(ctx context.Context, ownerID, id string) (err error) {
	defer observe(ctx, s.observer, "homily.delete", time.Now(), &err, map[string]any{"owner": ownerID, "homily": id})

	if err := requireOwner(ownerID); err != nil {
		return err
	}
	return s.homilies.Delete(ctx, ownerID, id)
}

func (s *homilyService) List(ctx context.Context, ownerID string, params repository.ListParams) (*Page, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	p, err := params.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	rows, total, err := s.homilies.List(ctx, ownerID, p)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*domain.Homily{}
	}
	return &Page{
		Items:       rows,
		Total:       total,
		TotalPages:  repository.TotalPages(total, p.PageSize),
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
	}, nil
}

func (s *homilyService) Dashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	counts, err := s.homilies.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	recent, total, err := s.homilies.List(ctx, ownerID, repository.ListParams{
		PageSize:  recentLimit,
		SortBy:    "updated_at",
		SortOrder: repository.SortDesc,
	})
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []*domain.Homily{}
	}
	return &Dashboard{Total: total, Counts: counts, Recent: recent}, nil
}

func (s *homilyService) ExportHTML(ctx context.Context, ownerID, id string) ([]byte, error) {
	h, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return RenderHTML(h)
}
