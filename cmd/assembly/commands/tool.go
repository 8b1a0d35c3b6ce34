package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newToolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tool",
		Short: "Show the build tool behind the project and its version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := c.app.Tool(cmd.Context(), c.dir, c.overrides)
			if err != nil {
				return err
			}

			version := "unknown"
			if info.Version != nil {
				version = info.Version.String()
			}
			status := "available"
			if !info.Available {
				status = "not available"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\nproject %s\nfingerprint %s\n",
				info.Backend, version, status, info.Project.File, info.Fingerprint)
			return nil
		},
	}
}
