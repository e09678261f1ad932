package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/llm"
	"github.com/homilybuild/homily/internal/service"
	"github.com/homilybuild/homily/internal/teatest"
	"github.com/homilybuild/homily/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openWizardModel opens a session on h at step and wraps it in the TUI model.
func openWizardModel(t *testing.T, app *App, h *domain.Homily, step int) *wizardModel {
	t.Helper()
	ctx := context.Background()
	handle, err := app.Wizards.Open(ctx, "owner-1", h.ID, fmt.Sprintf("%s/%s?%s=%d", service.ListingPath, h.ID, wizard.StepParam, step))
	require.NoError(t, err)
	t.Cleanup(func() { app.Wizards.Close("owner-1", h.ID) })
	return newWizardModel(ctx, app, handle)
}

func newWizardDriver(t *testing.T, m *wizardModel) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, m, teatest.WithSize(100, 40))
	d.DrainInit()
	return d
}

func fillHomily(t *testing.T, app *App, h *domain.Homily, fields map[domain.Field]string) {
	t.Helper()
	_, err := app.Homilies.Update(context.Background(), "owner-1", h.ID, fields)
	require.NoError(t, err)
}

func TestWizardTUI_NavigateAndRefuse(t *testing.T) {
	app, _ := testApp(t)
	h := createHomily(t, app, "Good Shepherd Sunday")
	m := openWizardModel(t, app, h, 1)
	d := newWizardDriver(t, m)

	assert.Contains(t, d.View(), "STEP 1 OF 7 · TITLE & DESCRIPTION")
	assert.Contains(t, d.View(), "Good Shepherd Sunday")
	assert.Contains(t, d.View(), "n next")

	d.PressKey('n')
	assert.Equal(t, 2, m.session().Step())
	assert.Contains(t, d.View(), "STEP 2 OF 7 · CONTEXT")
	assert.Contains(t, d.View(), "Draft saved")

	d.PressKey('n')
	assert.Equal(t, 2, m.session().Step(), "empty context blocks the move")
	assert.Contains(t, d.View(), "context is required before continuing")

	d.PressKey('b')
	assert.Equal(t, 1, m.session().Step())

	d.PressKey('4')
	assert.Equal(t, 1, m.session().Step(), "jump past an empty context is refused")
	assert.False(t, d.Quitting)
}

func TestWizardTUI_EditField(t *testing.T) {
	app, _ := testApp(t)
	h := createHomily(t, app, "Pentecost")
	m := openWizardModel(t, app, h, 2)
	d := newWizardDriver(t, m)

	d.PressKey('e')
	require.NotNil(t, m.form, "edit opens a form")
	assert.Contains(t, d.View(), "esc cancel")

	d.Type("Cathedral")
	d.PressEnter()
	require.Nil(t, m.form, "enter on the last field completes the form")
	assert.Equal(t, "Cathedral", strings.TrimSpace(m.session().Record().Context))
	assert.Contains(t, d.View(), "Cathedral")

	d.PressKey('n')
	assert.Equal(t, 3, m.session().Step())

	stored, err := app.Homilies.GetByID(context.Background(), "owner-1", h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cathedral", strings.TrimSpace(stored.Context))
}

func TestWizardTUI_EscCancelsEdit(t *testing.T) {
	app, _ := testApp(t)
	h := createHomily(t, app, "Epiphany")
	m := openWizardModel(t, app, h, 2)
	d := newWizardDriver(t, m)

	d.PressKey('e')
	d.Type("Village")
	d.PressEsc()

	assert.Nil(t, m.form)
	assert.Empty(t, m.session().Record().Context)
	assert.Contains(t, d.View(), "Edit cancelled")
	assert.False(t, d.Quitting, "esc inside the form does not leave the wizard")
}

func TestWizardTUI_GenerateShowsSpinnerUntilDone(t *testing.T) {
	app, gen := testApp(t)
	h := createHomily(t, app, "Good Shepherd Sunday")
	fillHomily(t, app, h, map[domain.Field]string{
		domain.FieldContext:     "Parish",
		domain.FieldReadings:    "Jn 10:11-18",
		domain.FieldDefinitions: "Shepherd: one who tends",
	})
	m := openWizardModel(t, app, h, 5)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Generating first questions…")

	_, ignored := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Nil(t, ignored, "keys wait while a call is running")
	assert.Equal(t, 5, m.session().Step())

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	var done bool
	for _, c := range batch {
		if msg, ok := c().(sessionDoneMsg); ok {
			m.Update(msg)
			done = true
		}
	}
	require.True(t, done)

	view := m.View()
	assert.NotContains(t, view, "Generating first questions…")
	assert.Contains(t, view, "First questions generated")
	assert.Contains(t, view, "1. What does the shepherd risk?")
	assert.Equal(t, []llm.TaskType{llm.TaskFirstQuestions}, gen.tasks)
}

func TestWizardTUI_GenerateOnPlainStep(t *testing.T) {
	app, gen := testApp(t)
	h := createHomily(t, app, "Lent I")
	m := openWizardModel(t, app, h, 1)
	d := newWizardDriver(t, m)

	d.PressKey('g')
	assert.Contains(t, d.View(), "Step 1 has nothing to generate")
	assert.Empty(t, gen.tasks)
}

func TestWizardTUI_Finish(t *testing.T) {
	app, _ := testApp(t)
	h := createHomily(t, app, "Christ the King")
	fillHomily(t, app, h, map[domain.Field]string{
		domain.FieldContext:         "Cathedral",
		domain.FieldReadings:        "Jn 18:33-37",
		domain.FieldDefinitions:     "King: one who serves",
		domain.FieldFirstQuestions:  "Q1",
		domain.FieldSecondQuestions: "Q2",
		domain.FieldFinalDraft:      "A king who serves.",
	})

	t.Run("only from the last step", func(t *testing.T) {
		m := openWizardModel(t, app, h, 6)
		d := newWizardDriver(t, m)

		d.PressKey('f')
		assert.False(t, d.Quitting)
		assert.Contains(t, d.View(), "Finish is only available on the last step")
	})

	t.Run("saves and quits", func(t *testing.T) {
		m := openWizardModel(t, app, h, 7)
		d := newWizardDriver(t, m)

		assert.Contains(t, d.View(), "f finish")
		d.PressKey('f')
		assert.True(t, d.Quitting)
		assert.True(t, m.finished)
		assert.Contains(t, d.View(), "Homily saved")
		assert.Contains(t, d.View(), "Finished. Back to http://homily.test/homilies\n")

		stored, err := app.Homilies.GetByID(context.Background(), "owner-1", h.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusComplete, stored.Status)
	})
}

func TestWizardTUI_QuitLeavesUnsaved(t *testing.T) {
	app, _ := testApp(t)
	h := createHomily(t, app, "Advent II")
	m := openWizardModel(t, app, h, 2)
	d := newWizardDriver(t, m)

	d.PressKey('e')
	d.Type("Hospital chapel")
	d.PressEnter()
	d.PressKey('q')
	assert.True(t, d.Quitting)

	stored, err := app.Homilies.GetByID(context.Background(), "owner-1", h.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Context)
}

func TestWizardCmd_PlainFlagKeepsLinePrompt(t *testing.T) {
	app, _ := testApp(t)
	app.IsInteractive = func() bool { return true }
	h := createHomily(t, app, "Trinity Sunday")

	out, err := executeCmd(t, app, "show\nquit\n", "wizard", h.ID, "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "STEP 1 OF 7 · TITLE & DESCRIPTION")
	assert.Contains(t, out, "wizard›")
}
