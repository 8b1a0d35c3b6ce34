package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/assembly/internal/core/domain"
)

func (c *CLI) newRunCmd() *cobra.Command {
	var flags domain.Flags
	cmd := &cobra.Command{
		Use:   "run <target>",
		Short: "Build a target and run it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Run(cmd.Context(), c.dir, args[0], flags, c.overrides)
			out := cmd.OutOrStdout()
			for _, line := range res.Lines {
				_, _ = fmt.Fprintln(out, line)
			}
			return err
		},
	}
	addFlagFlags(cmd, &flags)
	return cmd
}
