package cli

import (
	"errors"
	"fmt"

	"github.com/homilybuild/homily/internal/cli/formatter"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSettings(cmd, app)
		},
	}

	defs := &cobra.Command{
		Use:   "definitions",
		Short: "Manage the definitions used to prefill new homilies",
	}
	defs.AddCommand(newDefinitionsSetCmd(app), newDefinitionsResetCmd(app))

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showSettings(cmd, app)
			},
		},
		defs,
		newDefaultContextCmd(app),
	)
	return cmd
}

func showSettings(cmd *cobra.Command, app *App) error {
	s, err := app.Settings.Get(cmd.Context(), app.owner())
	if err != nil {
		return err
	}
	var pc *domain.PreachingContext
	if s.DefaultContextID != nil {
		pc, err = app.Contexts.GetByID(cmd.Context(), app.owner(), *s.DefaultContextID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(s, pc))
	return nil
}

func newDefinitionsSetCmd(app *App) *cobra.Command {
	var text, file string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace your definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				var err error
				if text, err = readFieldFile(cmd.InOrStdin(), file); err != nil {
					return err
				}
			}
			if text == "" {
				return fmt.Errorf("provide --text or --file")
			}
			if _, err := app.Settings.SetDefinitions(cmd.Context(), app.owner(), text); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Definitions saved.")
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Definitions text")
	cmd.Flags().StringVar(&file, "file", "", "Read definitions from a file (\"-\" for stdin)")
	return cmd
}

func newDefinitionsResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.Settings.ResetDefinitions(cmd.Context(), app.owner()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Definitions reset to the built-in text.")
			return nil
		},
	}
}

func newDefaultContextCmd(app *App) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "default-context [NAME|ID]",
		Short: "Choose the context new homilies start with",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if unset {
				if _, err := app.Settings.SetDefaultContext(cmd.Context(), app.owner(), ""); err != nil {
					return err
				}
				fmt.Fprintln(out, "Default context cleared.")
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("name a context or pass --clear")
			}
			pc, err := resolveContext(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Settings.SetDefaultContext(cmd.Context(), app.owner(), pc.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Default context: %s\n", formatter.Bold(pc.Name))
			return nil
		},
	}
	cmd.Flags().BoolVar(&unset, "clear", false, "Remove the default context")
	return cmd
}
