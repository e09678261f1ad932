package importer

import (
	"bytes"
	"testing"
	"time"

	"github.com/homilybuild/homily/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestConvert_FullArchive(t *testing.T) {
	out, err := Convert(validFullArchive(), "owner-1", importTime)
	require.NoError(t, err)

	require.Len(t, out.Contexts, 2)
	parish := out.Contexts[0]
	assert.NotEmpty(t, parish.ID)
	assert.Equal(t, "owner-1", parish.OwnerID)
	assert.Equal(t, "Parish", parish.Name)

	require.Len(t, out.Homilies, 2)
	first := out.Homilies[0]
	assert.Equal(t, "owner-1", first.OwnerID)
	assert.Equal(t, "Rural parish, English", first.Context, "context text copied from the referenced context")
	assert.Equal(t, domain.StatusNotStarted, first.Status)
	assert.Equal(t, importTime, first.CreatedAt)
	assert.Equal(t, importTime, first.UpdatedAt)

	second := out.Homilies[1]
	assert.Equal(t, "Cathedral", second.Context)
	assert.Equal(t, domain.StatusRoughDraft, second.Status)
	assert.Equal(t, time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC), second.CreatedAt)
	assert.Equal(t, time.Date(2025, 12, 2, 9, 0, 0, 0, time.UTC), second.UpdatedAt)

	require.NotNil(t, out.Settings)
	assert.Equal(t, "Short and concrete.", out.Settings.Definitions)
	require.NotNil(t, out.Settings.DefaultContextID)
	assert.Equal(t, parish.ID, *out.Settings.DefaultContextID)
}

func TestConvert_FreshIDsEachTime(t *testing.T) {
	a, err := Convert(validFullArchive(), "owner-1", importTime)
	require.NoError(t, err)
	b, err := Convert(validFullArchive(), "owner-1", importTime)
	require.NoError(t, err)
	assert.NotEqual(t, a.Homilies[0].ID, b.Homilies[0].ID)
	assert.NotEqual(t, a.Contexts[0].ID, b.Contexts[0].ID)
}

func TestConvert_NoSettings(t *testing.T) {
	out, err := Convert(validMinimalArchive(), "owner-1", importTime)
	require.NoError(t, err)
	assert.Nil(t, out.Settings)
	assert.Empty(t, out.Contexts)
}

func TestBuild_RoundTrip(t *testing.T) {
	pc := &domain.PreachingContext{ID: "ctx-1", Name: "Parish", Content: "Rural parish"}
	h := &domain.Homily{
		ID:        "h-1",
		CreatedAt: time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC),
	}
	h.Title = "Advent I"
	h.Context = "Rural parish"
	h.SecondQuestions = "Q2"
	ctxID := "ctx-1"
	settings := &domain.UserSettings{Definitions: "Be brief.", DefaultContextID: &ctxID}

	archive := Build([]*domain.Homily{h}, []*domain.PreachingContext{pc}, settings, importTime)
	assert.Equal(t, "2026-03-01T12:00:00Z", archive.ExportedAt)
	require.NotNil(t, archive.Settings)
	assert.Equal(t, "ctx-1", *archive.Settings.DefaultContextRef)

	var buf bytes.Buffer
	require.NoError(t, archive.Write(&buf))
	parsed, err := ParseArchive(&buf)
	require.NoError(t, err)
	require.Empty(t, ValidateArchive(parsed))

	out, err := Convert(parsed, "owner-2", importTime)
	require.NoError(t, err)
	require.Len(t, out.Homilies, 1)
	got := out.Homilies[0]
	assert.Equal(t, h.DraftRecord, got.DraftRecord)
	assert.Equal(t, domain.StatusSecondDraft, got.Status)
	assert.Equal(t, h.CreatedAt, got.CreatedAt)
	assert.Equal(t, "Be brief.", out.Settings.Definitions)
	assert.Equal(t, out.Contexts[0].ID, *out.Settings.DefaultContextID)
}

func TestBuild_DefaultSettingsOmitted(t *testing.T) {
	stale := "deleted-context"
	settings := &domain.UserSettings{DefaultContextID: &stale}

	archive := Build(nil, nil, settings, importTime)
	assert.Nil(t, archive.Settings, "built-in definitions and a dangling default are not archived")
	assert.NotNil(t, archive.Homilies)
	assert.Empty(t, ValidateArchive(archive))
}
