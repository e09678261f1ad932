package service

import (
	"context"
	"time"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/importer"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/wizard"
)

type HomilyService interface {
	Create(ctx context.Context, ownerID string, in CreateHomilyInput) (*domain.Homily, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.Homily, error)
	Update(ctx context.Context, ownerID, id string, patch map[domain.Field]string) (*domain.Homily, error)
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string, params repository.ListParams) (*Page, error)
	ExportHTML(ctx context.Context, ownerID, id string) ([]byte, error)
	Dashboard(ctx context.Context, ownerID string) (*Dashboard, error)
}

type ContextService interface {
	Create(ctx context.Context, ownerID, name, content string) (*domain.PreachingContext, error)
	GetByID(ctx context.Context, ownerID, id string) (*domain.PreachingContext, error)
	List(ctx context.Context, ownerID string) ([]*domain.PreachingContext, error)
	Update(ctx context.Context, ownerID, id, name, content string) (*domain.PreachingContext, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type SettingsService interface {
	Get(ctx context.Context, ownerID string) (*domain.UserSettings, error)
	SetDefinitions(ctx context.Context, ownerID, definitions string) (*domain.UserSettings, error)
	ResetDefinitions(ctx context.Context, ownerID string) (*domain.UserSettings, error)
	// SetDefaultContext sets or, with an empty id, clears the default context.
	SetDefaultContext(ctx context.Context, ownerID, contextID string) (*domain.UserSettings, error)
}

// ArchiveService backs up and restores an owner's data as JSON.
type ArchiveService interface {
	Export(ctx context.Context, ownerID string) (*importer.Archive, error)
	// Import adds the archived rows with fresh IDs; nothing is overwritten
	// except settings, which the archive replaces when it carries them.
	Import(ctx context.Context, ownerID string, a *importer.Archive) (*ImportResult, error)
}

// ImportResult counts what an import created.
type ImportResult struct {
	Homilies int  `json:"homilies"`
	Contexts int  `json:"contexts"`
	Settings bool `json:"settings"`
}

// WizardHandle is a live session with its notification inbox.
type WizardHandle struct {
	OwnerID   string
	HomilyID  string
	Session   *wizard.Session
	Inbox     *wizard.Inbox
	Navigator *wizard.URLNavigator

	store    *draftStore
	lastUsed time.Time
}

type WizardService interface {
	// Open builds a fresh session from the stored homily, replacing any live
	// one. The step is read from shareURL's step parameter.
	Open(ctx context.Context, ownerID, homilyID, shareURL string) (*WizardHandle, error)
	// Session returns the live session, opening one at step 1 if needed.
	// A session whose homily was edited elsewhere is reloaded at its step.
	Session(ctx context.Context, ownerID, homilyID string) (*WizardHandle, error)
	Close(ownerID, homilyID string)
	// Active returns the number of live sessions.
	Active() int
}

// CreateHomilyInput is the first wizard screen.
type CreateHomilyInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// ContextID selects a saved context; empty uses the owner's default.
	ContextID string `json:"contextId,omitempty"`
	Readings  string `json:"readings,omitempty"`
}

// Page is one page of a homily listing.
type Page struct {
	Items       []*domain.Homily `json:"items"`
	Total       int              `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	PageSize    int              `json:"pageSize"`
}

// Dashboard summarises an owner's homilies.
type Dashboard struct {
	Total  int                   `json:"total"`
	Counts map[domain.Status]int `json:"counts"`
	Recent []*domain.Homily      `json:"recent"`
}
