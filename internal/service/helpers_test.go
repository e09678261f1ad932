package service

import (
	"context"
	"sync"
	"testing"

	"github.com/homilybuild/homily/internal/db"
	"github.com/homilybuild/homily/internal/llm"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/testutil"
)

type services struct {
	db       *db.DB
	homilies HomilyService
	contexts ContextService
	settings SettingsService
	wizards  WizardService
	archives ArchiveService
	gen      *stubGenerator
}

func newServices(t *testing.T) *services {
	t.Helper()
	database := testutil.NewTestDB(t)
	conn := database.Conn()
	homilyRepo := repository.NewSQLHomilyRepo(conn)
	contextRepo := repository.NewSQLContextRepo(conn)
	settingsRepo := repository.NewSQLSettingsRepo(conn)
	gen := &stubGenerator{result: llm.GenerationResult{Content: "generated"}}

	return &services{
		db:       database,
		homilies: NewHomilyService(homilyRepo, testutil.NewTestUoW(database)),
		contexts: NewContextService(contextRepo),
		settings: NewSettingsService(settingsRepo, contextRepo),
		wizards:  NewWizardService(homilyRepo, settingsRepo, gen, nil),
		archives: NewArchiveService(homilyRepo, contextRepo, settingsRepo, testutil.NewTestUoW(database)),
		gen:      gen,
	}
}

type stubGenerator struct {
	mu      sync.Mutex
	result  llm.GenerationResult
	prompts []string
}

func (g *stubGenerator) Generate(ctx context.Context, task llm.TaskType, prompt, identity string) llm.GenerationResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.result
}
