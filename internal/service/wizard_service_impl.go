package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/wizard"
	"go.uber.org/zap"
)

// ListingPath is where a finalized session sends the user.
const ListingPath = "/homilies"

// maxLiveSessions bounds the registry. The least recently used session is
// dropped first; its edits up to the last save are already stored.
const maxLiveSessions = 128

type wizardService struct {
	homilies  repository.HomilyRepo
	settings  repository.SettingsRepo
	generator wizard.Generator
	steps     wizard.Steps
	logger    *zap.Logger
	now       func() time.Time
	limit     int

	mu       sync.Mutex
	sessions map[string]*WizardHandle
}

func NewWizardService(
	homilies repository.HomilyRepo,
	settings repository.SettingsRepo,
	generator wizard.Generator,
	logger *zap.Logger,
) WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &wizardService{
		homilies:  homilies,
		settings:  settings,
		generator: generator,
		steps:     wizard.DefaultSteps(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		limit:     maxLiveSessions,
		sessions:  make(map[string]*WizardHandle),
	}
}

func sessionKey(ownerID, homilyID string) string {
	return ownerID + "/" + homilyID
}

func (s *wizardService) Open(ctx context.Context, ownerID, homilyID, shareURL string) (*WizardHandle, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	h, err := s.homilies.GetByID(ctx, ownerID, homilyID)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, h, shareURL)
}

func (s *wizardService) open(ctx context.Context, h *domain.Homily, shareURL string) (*WizardHandle, error) {
	us, err := loadSettings(ctx, s.settings, h.OwnerID)
	if err != nil {
		return nil, err
	}

	if shareURL == "" {
		shareURL = fmt.Sprintf("%s/%s", ListingPath, h.ID)
	}
	nav, err := wizard.NewURLNavigator(shareURL, ListingPath)
	if err != nil {
		return nil, fmt.Errorf("%w: share url: %v", ErrInvalidInput, err)
	}

	store := &draftStore{homilies: s.homilies, now: s.now}
	store.markSynced(h.UpdatedAt)

	inbox := &wizard.Inbox{}
	session, err := wizard.NewSession(wizard.Config{
		Steps:              s.steps,
		HomilyID:           h.ID,
		Identity:           h.OwnerID,
		Record:             h.DraftRecord,
		Generator:          s.generator,
		Storage:            store,
		Navigator:          nav,
		Notifier:           inbox,
		DefaultDefinitions: us.EffectiveDefinitions(),
		Logger:             s.logger,
	})
	if err != nil {
		return nil, err
	}

	handle := &WizardHandle{OwnerID: h.OwnerID, HomilyID: h.ID, Session: session, Inbox: inbox, Navigator: nav, store: store}
	s.mu.Lock()
	defer s.mu.Unlock()
	handle.lastUsed = s.now()
	s.sessions[sessionKey(h.OwnerID, h.ID)] = handle
	s.evictLocked()
	return handle, nil
}

// Session returns the live session unless the stored row changed behind
// it, in which case the session is rebuilt from storage at the same step.
func (s *wizardService) Session(ctx context.Context, ownerID, homilyID string) (*WizardHandle, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	key := sessionKey(ownerID, homilyID)
	s.mu.Lock()
	handle, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok || handle.Session.Finished() {
		return s.Open(ctx, ownerID, homilyID, "")
	}

	h, err := s.homilies.GetByID(ctx, ownerID, homilyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Close(ownerID, homilyID)
		}
		return nil, err
	}
	// A save in flight moves updated_at on its own.
	if saving, _ := handle.Session.Busy(); saving || !handle.store.stale(h.UpdatedAt) {
		s.mu.Lock()
		handle.lastUsed = s.now()
		s.mu.Unlock()
		return handle, nil
	}

	s.logger.Debug("reloading wizard session after external edit",
		zap.String("homily", homilyID), zap.Int("step", handle.Session.Step()))
	return s.open(ctx, h, handle.Navigator.Location())
}

func (s *wizardService) Close(ownerID, homilyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(ownerID, homilyID))
}

func (s *wizardService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *wizardService) evictLocked() {
	for len(s.sessions) > s.limit {
		var (
			oldestKey string
			oldest    time.Time
		)
		for k, h := range s.sessions {
			if oldestKey == "" || h.lastUsed.Before(oldest) {
				oldestKey, oldest = k, h.lastUsed
			}
		}
		delete(s.sessions, oldestKey)
	}
}

// draftStore adapts HomilyRepo to wizard.Storage, filling blank titles and
// descriptions before they reach the database.
type draftStore struct {
	homilies repository.HomilyRepo
	now      func() time.Time

	mu     sync.Mutex
	synced time.Time
}

// markSynced records the updated_at the session last read or wrote.
func (d *draftStore) markSynced(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.synced = t.UTC().Truncate(time.Microsecond)
}

// stale reports whether the stored row was written by someone else.
func (d *draftStore) stale(stored time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !stored.UTC().Truncate(time.Microsecond).Equal(d.synced)
}

func (d *draftStore) SaveDraft(ctx context.Context, req wizard.SaveRequest) (string, error) {
	title := domain.DraftTitleFallback
	if req.Final {
		title = domain.FinalTitleFallback
	}
	now := d.now()
	h := &domain.Homily{
		ID:          req.HomilyID,
		OwnerID:     req.OwnerID,
		DraftRecord: req.Record.WithFallbacks(title),
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
		if err := d.homilies.Create(ctx, h); err != nil {
			return "", err
		}
		d.markSynced(now)
		return h.ID, nil
	}
	if err := d.homilies.Update(ctx, h); err != nil {
		return "", err
	}
	d.markSynced(now)
	return h.ID, nil
}
