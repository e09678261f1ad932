package cli

import (
	"fmt"

	"github.com/homilybuild/homily/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarise your homilies",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Homilies.Dashboard(cmd.Context(), app.owner())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDashboard(d))
			return nil
		},
	}
}
