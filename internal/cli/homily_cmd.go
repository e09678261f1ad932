package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/homilybuild/homily/internal/cli/formatter"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newHomilyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "homily",
		Aliases: []string{"h"},
		Short:   "Manage homilies",
	}

	cmd.AddCommand(
		newHomilyNewCmd(app),
		newHomilyListCmd(app),
		newHomilyShowCmd(app),
		newHomilyEditCmd(app),
		newHomilyRemoveCmd(app),
		newHomilyExportCmd(app),
	)
	return cmd
}

func newHomilyNewCmd(app *App) *cobra.Command {
	var in service.CreateHomilyInput
	var contextRef string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new homily",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if in.Title == "" && app.interactive() {
				if err := newHomilyForm(cmd, app, &in); err != nil {
					return err
				}
			} else if contextRef != "" {
				pc, err := resolveContext(ctx, app, contextRef)
				if err != nil {
					return err
				}
				in.ContextID = pc.ID
			}

			h, err := app.Homilies.Create(ctx, app.owner(), in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created homily %s [%s]\n", formatter.Bold(h.Title), h.DisplayID())
			fmt.Fprintf(out, "Continue with: homily wizard %s\n", h.DisplayID())
			fmt.Fprintf(out, "Resume link:   %s\n", app.Config.ShareURL(h.ID, 1))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Homily title")
	cmd.Flags().StringVar(&in.Description, "description", "", "Short description")
	cmd.Flags().StringVar(&in.Readings, "readings", "", "Scripture readings")
	cmd.Flags().StringVar(&contextRef, "context", "", "Saved context name or ID (default: your default context)")
	return cmd
}

func newHomilyForm(cmd *cobra.Command, app *App, in *service.CreateHomilyInput) error {
	contexts, err := app.Contexts.List(cmd.Context(), app.owner())
	if err != nil {
		return err
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Value(&in.Title).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("please enter a title for your homily")
				}
				return nil
			}),
		huh.NewText().Title("Description").Value(&in.Description),
		huh.NewText().Title("Scripture readings").Value(&in.Readings),
	}
	if len(contexts) > 0 {
		opts := []huh.Option[string]{huh.NewOption("Default", "")}
		for _, c := range contexts {
			opts = append(opts, huh.NewOption(c.Name, c.ID))
		}
		fields = append(fields, huh.NewSelect[string]().Title("Context").Options(opts...).Value(&in.ContextID))
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func newHomilyListCmd(app *App) *cobra.Command {
	params := repository.ListParams{SortOrder: repository.SortDesc}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List homilies",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.Homilies.List(cmd.Context(), app.owner(), params)
			if err != nil {
				return err
			}
			if page.Total == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No homilies found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHomilyList(page))
			return nil
		},
	}

	addListFlags(cmd.Flags(), &params)
	return cmd
}

func addListFlags(f *pflag.FlagSet, params *repository.ListParams) {
	f.IntVar(&params.Page, "page", 1, "Page number")
	f.IntVar(&params.PageSize, "page-size", repository.DefaultPageSize, fmt.Sprintf("Homilies per page (max %d)", repository.MaxPageSize))
	f.StringVar(&params.Search, "search", "", "Match title or description")
	f.StringVar(&params.SortBy, "sort-by", "created_at", "Sort column: "+strings.Join(repository.SortColumns(), ", "))
	f.Var(&params.SortOrder, "sort-order", "Sort direction")
}

func newHomilyShowCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a homily",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHomily(cmd, app, args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), service.Markdown(h))
				return nil
			}
			style := formatter.StylePlain
			if app.interactive() {
				style = formatter.StyleAuto
			}
			out, err := formatter.FormatHomilyDetail(h, style)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	return cmd
}

func newHomilyEditCmd(app *App) *cobra.Command {
	var sets, files []string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change homily fields",
		Long: "Change homily fields. Field names: " + fieldNames() + ".\n" +
			"Use --set field=value for short text and --file field=path for long text (\"-\" reads stdin).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := make(map[domain.Field]string)
			for _, kv := range sets {
				f, v, err := splitFieldArg(kv)
				if err != nil {
					return err
				}
				patch[f] = v
			}
			for _, kv := range files {
				f, path, err := splitFieldArg(kv)
				if err != nil {
					return err
				}
				v, err := readFieldFile(cmd.InOrStdin(), path)
				if err != nil {
					return err
				}
				patch[f] = v
			}
			if len(patch) == 0 {
				return fmt.Errorf("nothing to change; use --set or --file")
			}

			id, err := resolveHomilyID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			h, err := app.Homilies.Update(cmd.Context(), app.owner(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s [%s] %s\n", formatter.Bold(h.DisplayTitle()), h.DisplayID(), formatter.StatusPill(h.Status))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "field=path (repeatable)")
	return cmd
}

func newHomilyRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a homily",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHomily(cmd, app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete %q? [y/N]: ", h.DisplayTitle())) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			if err := app.Homilies.Delete(cmd.Context(), app.owner(), h.ID); err != nil {
				return err
			}
			app.Wizards.Close(app.owner(), h.ID)
			fmt.Fprintf(out, "Deleted %s\n", h.DisplayTitle())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newHomilyExportCmd(app *App) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export ID",
		Short: "Export a homily as HTML or markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveHomilyID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch strings.ToLower(format) {
			case "html":
				data, err = app.Homilies.ExportHTML(cmd.Context(), app.owner(), id)
			case "md", "markdown":
				var h *domain.Homily
				if h, err = app.Homilies.GetByID(cmd.Context(), app.owner(), id); err == nil {
					data = []byte(service.Markdown(h))
				}
			default:
				return fmt.Errorf("unknown format %q (want html or md)", format)
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "html", "html or md")
	return cmd
}

func loadHomily(cmd *cobra.Command, app *App, ref string) (*domain.Homily, error) {
	id, err := resolveHomilyID(cmd.Context(), app, ref)
	if err != nil {
		return nil, err
	}
	return app.Homilies.GetByID(cmd.Context(), app.owner(), id)
}

func splitFieldArg(kv string) (domain.Field, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok {
		return "", "", fmt.Errorf("expected field=value, got %q", kv)
	}
	f, err := domain.ParseField(strings.TrimSpace(name))
	if err != nil {
		return "", "", err
	}
	return f, value, nil
}

func readFieldFile(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}

func fieldNames() string {
	names := make([]string, len(domain.AllFields))
	for i, f := range domain.AllFields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
