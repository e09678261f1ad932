package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/homilybuild/homily/internal/db"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/importer"
	"github.com/homilybuild/homily/internal/repository"
)

type archiveService struct {
	homilies repository.HomilyRepo
	contexts repository.ContextRepo
	settings repository.SettingsRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewArchiveService(
	homilies repository.HomilyRepo,
	contexts repository.ContextRepo,
	settings repository.SettingsRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ArchiveService {
	return &archiveService{
		homilies: homilies,
		contexts: contexts,
		settings: settings,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Export collects every homily, context and setting of the owner.
func (s *archiveService) Export(ctx context.Context, ownerID string) (a *importer.Archive, err error) {
	defer observe(ctx, s.observer, "archive.export", time.Now(), &err, map[string]any{"owner": ownerID})

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	var homilies []*domain.Homily
	params := repository.ListParams{
		PageSize:  repository.MaxPageSize,
		SortBy:    "created_at",
		SortOrder: repository.SortAsc,
	}
	for params.Page = 1; ; params.Page++ {
		rows, total, err := s.homilies.List(ctx, ownerID, params)
		if err != nil {
			return nil, fmt.Errorf("listing homilies: %w", err)
		}
		homilies = append(homilies, rows...)
		if len(rows) == 0 || len(homilies) >= total {
			break
		}
	}

	contexts, err := s.contexts.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing contexts: %w", err)
	}
	settings, err := loadSettings(ctx, s.settings, ownerID)
	if err != nil {
		return nil, err
	}
	return importer.Build(homilies, contexts, settings, s.now()), nil
}

// Import validates the archive and stores its rows in one transaction.
func (s *archiveService) Import(ctx context.Context, ownerID string, a *importer.Archive) (res *ImportResult, err error) {
	defer observe(ctx, s.observer, "archive.import", time.Now(), &err, map[string]any{"owner": ownerID})

	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if errs := importer.ValidateArchive(a); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	converted, err := importer.Convert(a, ownerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("converting archive: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		contexts := repository.NewSQLContextRepo(tx)
		for _, pc := range converted.Contexts {
			if err := contexts.Create(ctx, pc); err != nil {
				return fmt.Errorf("creating context %q: %w", pc.Name, err)
			}
		}

		homilies := repository.NewSQLHomilyRepo(tx)
		for _, h := range converted.Homilies {
			if err := homilies.Create(ctx, h); err != nil {
				return fmt.Errorf("creating homily %q: %w", h.Title, err)
			}
		}

		if converted.Settings != nil {
			if err := repository.NewSQLSettingsRepo(tx).Upsert(ctx, converted.Settings); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Homilies: len(converted.Homilies),
		Contexts: len(converted.Contexts),
		Settings: converted.Settings != nil,
	}, nil
}

func formatValidationErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "archive validation failed (%d errors):", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, b.String())
}
