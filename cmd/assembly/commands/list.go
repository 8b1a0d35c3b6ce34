package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newListCmd() *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the targets of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := c.app.List(cmd.Context(), c.dir, match, c.overrides)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range targets {
				if t.Kind == "" {
					_, _ = fmt.Fprintln(out, t.Name)
					continue
				}
				_, _ = fmt.Fprintf(out, "%s\t%s\n", t.Name, t.Kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only list targets whose name matches the glob")
	return cmd
}
