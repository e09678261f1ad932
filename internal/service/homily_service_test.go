package service

import (
	"context"
	"errors"
	"testing"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHomilyService_Create_SeedsDefaults(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	h, err := svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "  Pentecost  "})
	require.NoError(t, err)

	assert.Equal(t, "Pentecost", h.Title)
	assert.Equal(t, NewHomilyDescription, h.Description)
	assert.Equal(t, domain.DefaultDefinitions, h.Definitions)
	assert.Empty(t, h.Context)
	assert.Equal(t, domain.StatusNotStarted, h.Status)

	stored, err := svc.homilies.GetByID(ctx, "owner-1", h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.DraftRecord, stored.DraftRecord)
}

func TestHomilyService_Create_UsesSettings(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	pc, err := svc.contexts.Create(ctx, "owner-1", "Youth Mass", "Teenagers, English")
	require.NoError(t, err)
	_, err = svc.settings.SetDefaultContext(ctx, "owner-1", pc.ID)
	require.NoError(t, err)
	_, err = svc.settings.SetDefinitions(ctx, "owner-1", "Homily: under 8 minutes")
	require.NoError(t, err)

	h, err := svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "Ascension"})
	require.NoError(t, err)
	assert.Equal(t, "Teenagers, English", h.Context)
	assert.Equal(t, "Homily: under 8 minutes", h.Definitions)

	other, err := svc.contexts.Create(ctx, "owner-1", "Vigil", "Spanish-speaking community")
	require.NoError(t, err)
	h, err = svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "Ascension", ContextID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, "Spanish-speaking community", h.Context)
}

func TestHomilyService_Create_Validation(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	_, err := svc.homilies.Create(ctx, "", CreateHomilyInput{Title: "x"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "x", ContextID: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHomilyService_Create_RollsBackOnWriteFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLHomilyRepo(database.Conn())
	boom := errors.New("disk I/O error")
	svc := NewHomilyService(repo, &testutil.FailOnNthExecUoW{DB: database, FailOn: 1, Err: boom})

	_, err := svc.Create(context.Background(), "owner-1", CreateHomilyInput{Title: "x"})
	assert.ErrorIs(t, err, boom)

	_, total, err := repo.List(context.Background(), "owner-1", repository.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestHomilyService_Update_PatchesAndDerivesStatus(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	h, err := svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "Lent I"})
	require.NoError(t, err)

	updated, err := svc.homilies.Update(ctx, "owner-1", h.ID, map[domain.Field]string{
		domain.FieldSecondQuestions: "answers",
		domain.FieldReadings:        "Mt 4:1-11",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSecondDraft, updated.Status)
	assert.Equal(t, "Lent I", updated.Title, "untouched fields are kept")

	_, err = svc.homilies.Update(ctx, "owner-1", h.ID, map[domain.Field]string{domain.FieldTitle: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.homilies.Update(ctx, "owner-1", h.ID, map[domain.Field]string{"sermon": "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.homilies.Update(ctx, "owner-2", h.ID, map[domain.Field]string{domain.FieldReadings: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHomilyService_ListAndDashboard(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		_, err := svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: title})
		require.NoError(t, err)
	}

	page, err := svc.homilies.List(ctx, "owner-1", repository.ListParams{PageSize: 3, Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Len(t, page.Items, 1)

	_, err = svc.homilies.List(ctx, "owner-1", repository.ListParams{SortBy: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	dash, err := svc.homilies.Dashboard(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 7, dash.Total)
	assert.Equal(t, 7, dash.Counts[domain.StatusNotStarted])
	assert.Len(t, dash.Recent, recentLimit)

	empty, err := svc.homilies.Dashboard(ctx, "owner-2")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Recent)
}

func TestHomilyService_Delete(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	h, err := svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "x"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.homilies.Delete(ctx, "owner-2", h.ID), repository.ErrNotFound)
	require.NoError(t, svc.homilies.Delete(ctx, "owner-1", h.ID))
	_, err = svc.homilies.GetByID(ctx, "owner-1", h.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHomilyService_ExportHTML(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	h, err := svc.homilies.Create(ctx, "owner-1", CreateHomilyInput{Title: "Easter <Vigil>"})
	require.NoError(t, err)
	_, err = svc.homilies.Update(ctx, "owner-1", h.ID, map[domain.Field]string{
		domain.FieldFinalDraft: "Christ is **risen**.\n<script>alert(1)</script>",
	})
	require.NoError(t, err)

	out, err := svc.homilies.ExportHTML(ctx, "owner-1", h.ID)
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Easter &lt;Vigil&gt;</title>")
	assert.Contains(t, html, "<strong>risen</strong>")
	assert.Contains(t, html, "<h2>Homily</h2>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "Complete")
}

func TestLogUseCaseObserver(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	obs := NewLogUseCaseObserver(zap.New(core))

	svc := newServices(t)
	contexts := NewContextService(repository.NewSQLContextRepo(svc.db.Conn()), obs)

	_, err := contexts.Create(context.Background(), "owner-1", "", "content")
	require.Error(t, err)
	_, err = contexts.Create(context.Background(), "owner-1", "name", "content")
	require.NoError(t, err)

	entries := logs.FilterMessage("service_use_case").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Equal(t, "context.create", entries[0].ContextMap()["use_case"])
	assert.Equal(t, true, entries[1].ContextMap()["success"])
}
