package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/gather/internal/display"
)

// NewListCommand creates the 'gather list' command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List project workspaces",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	summaries, err := a.store.List()
	if err != nil {
		return err
	}

	display.PrintProjectSummaries(cmd.OutOrStdout(), summaries)
	return nil
}
