// Package cmd wires the gather CLI: workspace creation, collection, the
// three update policies, and inspection commands.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for gather.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gather",
		Short: "Collect external file trees into managed project workspaces",
		Long: `Gather ingests files and directory trees into named project workspaces,
keeping a durable mapping between each file's original location and its
flattened name inside the workspace, and re-synchronizes the workspace as
the originals change.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("log-level", "", "log verbosity (trace, debug, info, warn, error)")

	cmd.AddCommand(NewCreateCommand())
	cmd.AddCommand(NewCollectCommand())
	cmd.AddCommand(NewUpdateCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewShowCommand())

	return cmd
}
