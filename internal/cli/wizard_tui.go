package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/homilybuild/homily/internal/cli/formatter"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/service"
	"github.com/homilybuild/homily/internal/wizard"
)

// maxShownNotes is how many recent notifications stay under the step.
const maxShownNotes = 4

type wizardKeyMap struct {
	Next     key.Binding
	Back     key.Binding
	Edit     key.Binding
	Generate key.Binding
	Save     key.Binding
	Finish   key.Binding
	Quit     key.Binding
}

var wizardKeys = wizardKeyMap{
	Next:     key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next")),
	Back:     key.NewBinding(key.WithKeys("b", "left"), key.WithHelp("b", "back")),
	Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Generate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
	Save:     key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
	Finish:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// sessionDoneMsg reports a session call that ran off the update loop.
type sessionDoneMsg struct {
	op  string
	err error
}

// wizardModel drives a wizard session from the terminal. Session calls that
// save or generate run as commands while a spinner shows; keys other than
// quit are ignored until they report back.
type wizardModel struct {
	ctx    context.Context
	app    *App
	handle *service.WizardHandle

	spinner spinner.Model
	busy    string

	form   *huh.Form
	fields []domain.Field
	values []*string

	notes    []wizard.Notification
	err      error
	width    int
	finished bool
	quitting bool
}

func newWizardModel(ctx context.Context, app *App, handle *service.WizardHandle) *wizardModel {
	return &wizardModel{
		ctx:     ctx,
		app:     app,
		handle:  handle,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StylePurple)),
	}
}

// runWizardTUI runs the model full screen until the user quits or finishes.
func runWizardTUI(ctx context.Context, app *App, handle *service.WizardHandle, in io.Reader, out io.Writer) error {
	_, err := tea.NewProgram(
		newWizardModel(ctx, app, handle),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	return err
}

func (m *wizardModel) session() *wizard.Session { return m.handle.Session }

func (m *wizardModel) Init() tea.Cmd {
	return nil
}

func (m *wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
	}
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case sessionDoneMsg:
		m.busy = ""
		m.collect()
		if err := quiet(msg.err); err != nil {
			m.err = err
		}
		if msg.op == "finish" && msg.err == nil {
			m.finished = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *wizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy != "" {
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	m.err = nil
	s := m.session()

	switch {
	case key.Matches(msg, wizardKeys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, wizardKeys.Next):
		return m, m.call("next", "Saving", func(ctx context.Context) error {
			_, err := s.Next(ctx)
			return err
		})
	case key.Matches(msg, wizardKeys.Back):
		return m, m.call("back", "Saving", func(ctx context.Context) error {
			_, err := s.Back(ctx)
			return err
		})
	case key.Matches(msg, wizardKeys.Edit):
		return m, m.startEdit()
	case key.Matches(msg, wizardKeys.Generate):
		def, _ := s.Steps().Get(s.Step())
		label := "Generating"
		if def.CanGenerate() {
			label += " " + def.GenerateField.Label()
		}
		return m, m.call("generate", label, func(ctx context.Context) error {
			_, err := s.Generate(ctx, def.ID)
			return err
		})
	case key.Matches(msg, wizardKeys.Save):
		return m, m.call("save", "Saving", s.SaveDraft)
	case key.Matches(msg, wizardKeys.Finish):
		return m, m.call("finish", "Saving", s.Finalize)
	}

	if len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9' {
		target := int(msg.Runes[0] - '0')
		return m, m.call("goto", "Saving", func(ctx context.Context) error {
			_, err := s.GoTo(ctx, target)
			return err
		})
	}
	return m, nil
}

// call runs fn as a command and shows the spinner until it reports back.
func (m *wizardModel) call(op, label string, fn func(context.Context) error) tea.Cmd {
	m.busy = label
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return sessionDoneMsg{op: op, err: fn(ctx)}
	})
}

func (m *wizardModel) startEdit() tea.Cmd {
	s := m.session()
	rec := s.Record()
	m.fields = stepFields(s.Steps(), s.Step())
	m.values = make([]*string, len(m.fields))

	inputs := make([]huh.Field, len(m.fields))
	for i, f := range m.fields {
		v := rec.Get(f)
		m.values[i] = &v
		inputs[i] = huh.NewText().Title(capitalize(f.Label())).Value(m.values[i]).Lines(8)
	}
	m.form = huh.NewForm(huh.NewGroup(inputs...)).WithShowHelp(true)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width)
	}
	return m.form.Init()
}

func (m *wizardModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.closeForm()
		m.notes = append(m.notes, wizard.Notification{Level: wizard.LevelInfo, Message: "Edit cancelled", Step: m.session().Step()})
		m.trimNotes()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		for i, f := range m.fields {
			if err := m.session().SetField(f, *m.values[i]); err != nil {
				m.err = err
			}
		}
		m.closeForm()
		return m, nil
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *wizardModel) closeForm() {
	m.form = nil
	m.fields = nil
	m.values = nil
}

// collect moves queued session notifications into the view.
func (m *wizardModel) collect() {
	m.notes = append(m.notes, m.handle.Inbox.Drain()...)
	m.trimNotes()
}

func (m *wizardModel) trimNotes() {
	if len(m.notes) > maxShownNotes {
		m.notes = m.notes[len(m.notes)-maxShownNotes:]
	}
}

func (m *wizardModel) View() string {
	s := m.session()
	def, _ := s.Steps().Get(s.Step())

	var b strings.Builder
	b.WriteString(formatter.Header(fmt.Sprintf("Step %d of %d · %s", def.ID, s.Steps().Len(), def.Name)))
	b.WriteString("\n\n")

	if m.finished {
		for _, n := range m.notes {
			b.WriteString(formatter.Notification(n) + "\n")
		}
		fmt.Fprintf(&b, "Finished. Back to %s\n", m.app.Config.BaseURL+m.handle.Navigator.Location())
		return b.String()
	}

	if m.form != nil {
		b.WriteString(m.form.View())
		b.WriteString("\n" + formatter.Dim("esc cancel") + "\n")
		return b.String()
	}

	rec := s.Record()
	for _, f := range stepFields(s.Steps(), def.ID) {
		v := strings.TrimSpace(rec.Get(f))
		if v == "" {
			v = formatter.Dim("(empty)")
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", formatter.Bold(capitalize(f.Label())), v)
	}

	b.WriteString(formatter.StatusPill(s.Status()) + "  " + formatter.Dim(m.hints(def)) + "\n")
	for _, n := range m.notes {
		b.WriteString(formatter.Notification(n) + "\n")
	}
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render(m.err.Error()) + "\n")
	}
	if m.busy != "" {
		b.WriteString(m.spinner.View() + " " + m.busy + "…\n")
	}
	return b.String()
}

func (m *wizardModel) hints(def wizard.StepDefinition) string {
	bindings := []key.Binding{wizardKeys.Edit}
	if def.CanGenerate() {
		bindings = append(bindings, wizardKeys.Generate)
	}
	if def.ID > 1 {
		bindings = append(bindings, wizardKeys.Back)
	}
	if def.ID < m.session().Steps().Last() {
		bindings = append(bindings, wizardKeys.Next)
	} else {
		bindings = append(bindings, wizardKeys.Finish)
	}
	bindings = append(bindings, wizardKeys.Save, wizardKeys.Quit)

	parts := make([]string, 0, len(bindings)+1)
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	parts = append(parts, fmt.Sprintf("1-%d jump", m.session().Steps().Len()))
	return strings.Join(parts, " · ")
}
