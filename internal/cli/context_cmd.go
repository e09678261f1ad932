package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/homilybuild/homily/internal/cli/formatter"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/spf13/cobra"
)

func newContextCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage saved preaching contexts",
	}

	cmd.AddCommand(
		newContextAddCmd(app),
		newContextListCmd(app),
		newContextShowCmd(app),
		newContextEditCmd(app),
		newContextRemoveCmd(app),
	)
	return cmd
}

func newContextAddCmd(app *App) *cobra.Command {
	var name, content, file string
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a context",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				text, err := readFieldFile(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				content = text
			} else if content == "" && app.interactive() {
				content = domain.DefaultContextTemplate
				err := huh.NewForm(huh.NewGroup(
					huh.NewText().Title("Context for " + name).Value(&content).Lines(10),
				)).Run()
				if err != nil {
					return err
				}
			}
			pc, err := app.Contexts.Create(cmd.Context(), app.owner(), name, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved context %s [%s]\n", formatter.Bold(pc.Name), shortContextID(pc.ID))

			if makeDefault {
				if _, err := app.Settings.SetDefaultContext(cmd.Context(), app.owner(), pc.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Set as default context.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Context name")
	cmd.Flags().StringVar(&content, "content", "", "Context text (default: edit a template)")
	cmd.Flags().StringVar(&file, "file", "", "Read context text from a file (\"-\" for stdin)")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Use for new homilies")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newContextListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.Contexts.List(cmd.Context(), app.owner())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contexts saved.")
				return nil
			}
			s, err := app.Settings.Get(cmd.Context(), app.owner())
			if err != nil {
				return err
			}
			var defaultID string
			if s.DefaultContextID != nil {
				defaultID = *s.DefaultContextID
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatContextList(list, defaultID))
			return nil
		},
	}
}

func newContextShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME|ID",
		Short: "Show a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := resolveContext(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(pc.Name))
			fmt.Fprintln(out, pc.Content)
			fmt.Fprintln(out, formatter.Dim("id "+pc.ID))
			return nil
		},
	}
}

func newContextEditCmd(app *App) *cobra.Command {
	var name, content, file string

	cmd := &cobra.Command{
		Use:   "edit NAME|ID",
		Short: "Change a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := resolveContext(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = pc.Name
			}
			if file != "" {
				if content, err = readFieldFile(cmd.InOrStdin(), file); err != nil {
					return err
				}
			}
			if content == "" {
				content = pc.Content
			}
			updated, err := app.Contexts.Update(cmd.Context(), app.owner(), pc.ID, name, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated context %s\n", formatter.Bold(updated.Name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&content, "content", "", "New context text")
	cmd.Flags().StringVar(&file, "file", "", "Read context text from a file (\"-\" for stdin)")
	return cmd
}

func newContextRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm NAME|ID",
		Aliases: []string{"remove"},
		Short:   "Delete a context",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := resolveContext(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete context %q? [y/N]: ", pc.Name)) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			if err := app.Contexts.Delete(cmd.Context(), app.owner(), pc.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted context %s\n", pc.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func shortContextID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
