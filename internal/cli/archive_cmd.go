package cli

import (
	"fmt"
	"os"

	"github.com/homilybuild/homily/internal/importer"
	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write all your homilies, contexts and settings as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := app.Archives.Export(cmd.Context(), app.owner())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return archive.Write(cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := archive.Write(f); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Backed up %d homilies and %d contexts to %s\n",
				len(archive.Homilies), len(archive.Contexts), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: "Add the homilies and contexts from a backup",
		Long: "Add the homilies and contexts from a backup made with \"homily backup\".\n" +
			"Rows are added alongside existing ones; settings in the backup replace yours. Use \"-\" to read stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				archive *importer.Archive
				err     error
			)
			if args[0] == "-" {
				archive, err = importer.ParseArchive(cmd.InOrStdin())
			} else {
				archive, err = importer.LoadArchive(args[0])
			}
			if err != nil {
				return err
			}

			res, err := app.Archives.Import(cmd.Context(), app.owner(), archive)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d homilies and %d contexts", res.Homilies, res.Contexts)
			if res.Settings {
				fmt.Fprint(cmd.OutOrStdout(), " and your settings")
			}
			fmt.Fprintln(cmd.OutOrStdout(), ".")
			return nil
		},
	}
}
