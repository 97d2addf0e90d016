package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gather/internal/display"
)

// NewShowCommand creates the 'gather show' command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project's summary, structure, or instructions",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	cmd.Flags().Bool("structure", false, "print the full directory-structure rendering")
	cmd.Flags().Bool("instructions", false, "print the instructions outline and text")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.store.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	showStructure, _ := cmd.Flags().GetBool("structure")
	showInstructions, _ := cmd.Flags().GetBool("instructions")

	switch {
	case showStructure:
		fmt.Fprint(out, p.DirectoryStructure)
	case showInstructions:
		display.PrintInstructions(out, p.Instructions)
	default:
		display.PrintProject(out, p)
	}
	return nil
}
