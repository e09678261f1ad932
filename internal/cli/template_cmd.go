package cli

import (
	"fmt"
	"strings"

	"github.com/homilybuild/homily/internal/cli/formatter"
	"github.com/homilybuild/homily/internal/template"
	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Browse the prompt templates",
	}

	cmd.AddCommand(
		newTemplateListCmd(),
		newTemplateShowCmd(),
	)
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List prompt templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := []string{"Name", "Placeholders"}
			var rows [][]string
			for _, t := range template.All() {
				tokens := t.Placeholders()
				names := make([]string, len(tokens))
				for i, tok := range tokens {
					names[i] = string(tok)
				}
				rows = append(rows, []string{t.Name, strings.Join(names, ", ")})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(headers, rows))
			return nil
		},
	}
}

func newTemplateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a prompt template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := template.Lookup(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTemplate(t))
			return nil
		},
	}
}
