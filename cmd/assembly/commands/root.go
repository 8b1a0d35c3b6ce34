// Package commands implements the CLI commands for assembly.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/assembly/internal/app"
	"go.trai.ch/assembly/internal/build"
	"go.trai.ch/assembly/internal/core/ports"
)

// CLI represents the command line interface for assembly.
type CLI struct {
	app     *app.App
	log     ports.Logger
	rootCmd *cobra.Command

	dir       string
	overrides app.Overrides
}

// New creates a new CLI instance with the given app.
func New(a *app.App, log ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "assembly",
		Short:         "One interface over make, cmake, cargo, ninja, bazel and compile_commands.json",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		log:     log,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.dir, "dir", "C", ".", "Project file or directory containing one")
	flags.StringVarP(&c.overrides.Config, "config", "c", "", "Config file (default: assembly.yaml in the project directory)")
	flags.StringVar(&c.overrides.Command, "command", "", "Override the build tool executable")
	flags.IntVarP(&c.overrides.Threads, "threads", "j", 0, "Parallel jobs passed to the build tool")
	flags.StringVar(&c.overrides.BuildDir, "build-dir", "", "Out-of-source build directory")
	flags.Bool("json", false, "Log in JSON format")
	flags.Bool("verbose", false, "Log subprocess invocations")
	flags.Bool("progress", false, "Stream build and run progress to stderr")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		c.configureLogger(cmd)
	}

	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newToolCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configureLogger(cmd *cobra.Command) {
	if jsonLogs, _ := cmd.Flags().GetBool("json"); jsonLogs {
		if l, ok := c.log.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(true)
		}
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		if l, ok := c.log.(interface{ SetVerbose(bool) }); ok {
			l.SetVerbose(true)
		}
	}
	if progress, _ := cmd.Flags().GetBool("progress"); progress && c.app != nil {
		if p, ok := c.app.Telemetry().(interface{ SetOutput(io.Writer) }); ok {
			p.SetOutput(cmd.ErrOrStderr())
		}
	}
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOut redirects command output. Used for testing.
func (c *CLI) SetOut(w io.Writer) {
	c.rootCmd.SetOut(w)
}

// SetErr redirects progress and error output. Used for testing.
func (c *CLI) SetErr(w io.Writer) {
	c.rootCmd.SetErr(w)
}
