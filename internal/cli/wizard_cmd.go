package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/homilybuild/homily/internal/cli/formatter"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/service"
	"github.com/homilybuild/homily/internal/wizard"
	"github.com/spf13/cobra"
)

const wizardHelp = `Commands:
  next | n          save and continue to the next step
  back | b          return to the previous step
  goto N | g N      jump to step N
  edit [field]      replace a field (default: this step's field)
  generate | gen    ask the assistant to write this step's field
  save              save the draft
  finish            save and close from the last step
  show | s          print this step again
  help | ?          this list
  quit | q          leave without saving`

func newWizardCmd(app *App) *cobra.Command {
	var (
		step  int
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "wizard ID",
		Short: "Work through a homily step by step",
		Long: "Work through a homily step by step.\n\n" +
			"On a terminal the wizard runs full screen; keys are shown under each step.\n" +
			"With --plain, or when input is piped, it reads commands line by line:\n\n" + wizardHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveHomilyID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var handle *service.WizardHandle
			if step > 0 {
				handle, err = app.Wizards.Open(ctx, app.owner(), id, fmt.Sprintf("%s/%s?%s=%d", service.ListingPath, id, wizard.StepParam, step))
			} else {
				handle, err = app.Wizards.Session(ctx, app.owner(), id)
			}
			if err != nil {
				return err
			}
			defer app.Wizards.Close(app.owner(), id)

			if app.interactive() && !plain {
				return runWizardTUI(ctx, app, handle, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			w := &wizardLoop{
				app:    app,
				handle: handle,
				in:     cmd.InOrStdin(),
				out:    cmd.OutOrStdout(),
				errOut: cmd.ErrOrStderr(),
			}
			return w.run(ctx)
		},
	}
	cmd.Flags().IntVar(&step, "step", 0, "Step to open at (default: resume)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Use the line prompt even on a terminal")
	return cmd
}

// wizardLoop drives a wizard session from line-oriented input. It serves
// piped input and --plain.
type wizardLoop struct {
	app    *App
	handle *service.WizardHandle
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func (w *wizardLoop) session() *wizard.Session { return w.handle.Session }

func (w *wizardLoop) run(ctx context.Context) error {
	w.showStep()
	for {
		fmt.Fprint(w.out, formatter.StylePurple.Render("wizard› "))
		line, err := readPromptLine(w.in)
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(w.out)
				return nil
			}
			return err
		}

		done, err := w.dispatch(ctx, strings.Fields(line))
		w.flush()
		if err != nil {
			fmt.Fprintln(w.out, formatter.StyleRed.Render(err.Error()))
		}
		if done {
			return nil
		}
	}
}

// dispatch runs one command. It reports true when the loop should end.
func (w *wizardLoop) dispatch(ctx context.Context, args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}
	s := w.session()

	switch strings.ToLower(args[0]) {
	case "next", "n":
		return false, w.move(ctx, func() error { _, err := s.Next(ctx); return err })
	case "back", "b":
		return false, w.move(ctx, func() error { _, err := s.Back(ctx); return err })
	case "goto", "g":
		if len(args) < 2 {
			return false, errors.New("usage: goto N")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return false, fmt.Errorf("invalid step %q", args[1])
		}
		return false, w.move(ctx, func() error { _, err := s.GoTo(ctx, n); return err })
	case "edit", "e":
		return false, w.edit(args[1:])
	case "generate", "gen":
		def, _ := s.Steps().Get(s.Step())
		if !def.CanGenerate() {
			return false, fmt.Errorf("%s has nothing to generate", def.Name)
		}
		stop := w.spin("Generating " + def.GenerateField.Label())
		_, err := s.Generate(ctx, def.ID)
		stop()
		if err == nil {
			w.printField(def.GenerateField)
		}
		return false, quiet(err)
	case "save":
		stop := w.spin("Saving")
		err := s.SaveDraft(ctx)
		stop()
		return false, quiet(err)
	case "finish", "done":
		stop := w.spin("Saving")
		err := s.Finalize(ctx)
		stop()
		if err != nil {
			return false, quiet(err)
		}
		w.flush()
		fmt.Fprintf(w.out, "Finished. Back to %s\n", w.link())
		return true, nil
	case "show", "s":
		w.showStep()
		return false, nil
	case "help", "?":
		fmt.Fprintln(w.out, wizardHelp)
		return false, nil
	case "quit", "q", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", args[0])
	}
}

func (w *wizardLoop) move(ctx context.Context, fn func() error) error {
	before := w.session().Step()
	stop := w.spin("Saving")
	err := fn()
	stop()
	if err != nil {
		return quiet(err)
	}
	if w.session().Step() != before {
		w.flush()
		w.showStep()
	}
	return nil
}

func (w *wizardLoop) edit(args []string) error {
	s := w.session()
	var f domain.Field
	if len(args) > 0 {
		parsed, err := domain.ParseField(args[0])
		if err != nil {
			return err
		}
		f = parsed
	} else {
		f = stepFields(s.Steps(), s.Step())[0]
	}

	value := s.Record().Get(f)
	if w.app.interactive() {
		err := huh.NewForm(huh.NewGroup(
			huh.NewText().Title(capitalize(f.Label())).Value(&value).Lines(12),
		)).Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w.out, "Enter %s; finish with a line containing only \".\"\n", f.Label())
		text, err := readUntilDot(w.in)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		value = text
	}
	return s.SetField(f, value)
}

func (w *wizardLoop) showStep() {
	s := w.session()
	def, _ := s.Steps().Get(s.Step())
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, formatter.Header(fmt.Sprintf("Step %d of %d · %s", def.ID, s.Steps().Len(), def.Name)))
	for _, f := range stepFields(s.Steps(), def.ID) {
		w.printField(f)
	}
	hints := []string{"edit"}
	if def.CanGenerate() {
		hints = append(hints, "generate")
	}
	if def.ID > 1 {
		hints = append(hints, "back")
	}
	if def.ID < s.Steps().Last() {
		hints = append(hints, "next")
	} else {
		hints = append(hints, "finish")
	}
	fmt.Fprintf(w.out, "%s  %s\n", formatter.StatusPill(s.Status()), formatter.Dim(strings.Join(hints, " · ")))
	fmt.Fprintf(w.out, "%s %s\n\n", formatter.Dim("Resume:"), w.link())
}

func (w *wizardLoop) printField(f domain.Field) {
	v := strings.TrimSpace(w.session().Record().Get(f))
	if v == "" {
		v = formatter.Dim("(empty)")
	}
	fmt.Fprintf(w.out, "%s\n%s\n\n", formatter.Bold(capitalize(f.Label())), v)
}

// flush prints queued session notifications.
func (w *wizardLoop) flush() {
	for _, n := range w.handle.Inbox.Drain() {
		fmt.Fprintln(w.out, formatter.Notification(n))
	}
}

func (w *wizardLoop) link() string {
	return w.app.Config.BaseURL + w.handle.Navigator.Location()
}

func (w *wizardLoop) spin(msg string) func() {
	if !w.app.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(w.errOut, msg)
}

// stepFields lists the fields a step edits, first one being the default.
func stepFields(steps wizard.Steps, id int) []domain.Field {
	def, _ := steps.Get(id)
	switch {
	case def.RequiredField != "":
		return []domain.Field{def.RequiredField}
	case def.GenerateField != "":
		return []domain.Field{def.GenerateField}
	default:
		return []domain.Field{domain.FieldTitle, domain.FieldDescription}
	}
}

// quiet drops errors the session already reported as notifications.
func quiet(err error) error {
	var (
		verr *wizard.ValidationError
		gerr *wizard.GenerationError
		perr *wizard.PersistenceError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &gerr), errors.As(err, &perr):
		return nil
	case errors.Is(err, wizard.ErrAuthenticationRequired),
		errors.Is(err, wizard.ErrNoGeneration),
		errors.Is(err, wizard.ErrNotFinalStep):
		return nil
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
