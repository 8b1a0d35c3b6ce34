package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/assembly/internal/core/domain"
)

// addFlagFlags registers the compiler flag options shared by build and run.
func addFlagFlags(cmd *cobra.Command, f *domain.Flags) {
	cmd.Flags().StringVar(&f.Add, "add-flags", "", "Compiler flags appended to the inherited ones")
	cmd.Flags().StringVar(&f.Replace, "flags", "", "Compiler flags replacing the inherited ones")
}

func (c *CLI) newBuildCmd() *cobra.Command {
	var flags domain.Flags
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build targets, or the default target when none are given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), c.dir, args, flags, c.overrides)
		},
	}
	addFlagFlags(cmd, &flags)
	return cmd
}
