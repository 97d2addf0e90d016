package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCreateCommand creates the 'gather create' command.
func NewCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <project>",
		Short: "Create a new empty project workspace",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreate,
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := args[0]

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.store.Create(name, time.Now()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created project %s at %s\n", name, a.store.ProjectDir(name))
	return nil
}
