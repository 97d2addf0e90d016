package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/gather/internal/display"
	"github.com/harrison/gather/internal/models"
	"github.com/harrison/gather/internal/syncer"
)

// NewUpdateCommand creates the 'gather update' command.
func NewUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Re-synchronize a project workspace with its sources",
		Long: `Update re-synchronizes a project against its original source files.

Modes:
  full       rescan every registered source directory; copy new and modified
  refresh    re-stat only the recorded files; copy modified (default)
  selective  like refresh, but you choose which files to act on`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("mode", "refresh", "update mode: full, refresh, or selective")
	cmd.Flags().String("pick", "", "selective mode: comma-separated pick-list numbers (default: prompt)")
	cmd.Flags().BoolP("yes", "y", false, "skip confirmation prompts")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	projectName := args[0]

	mode, _ := cmd.Flags().GetString("mode")
	assumeYes, _ := cmd.Flags().GetBool("yes")
	pickFlag, _ := cmd.Flags().GetString("pick")

	var policy syncer.Policy
	switch mode {
	case "full":
		policy = syncer.PolicyFull
	case "refresh":
		policy = syncer.PolicyRefresh
	case "selective":
		policy = syncer.PolicySelective
	default:
		return fmt.Errorf("invalid mode %q, must be full, refresh, or selective", mode)
	}

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.store.Load(projectName)
	if err != nil {
		return err
	}

	f, err := buildFilter(cmd, a)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()
	engine := syncer.New(a.store, a.log)

	opts := syncer.Options{
		Confirm: func(cs *models.ChangeSet) bool {
			display.PrintChangeSet(out, cs)
			return confirm(in, out, "Proceed with copying?", assumeYes)
		},
		Pick: func(entries []syncer.PickEntry) []string {
			display.PrintPickList(out, entries)
			return choosePicks(in, out, entries, pickFlag)
		},
		Disambiguate: a.cfg.DisambiguateCollisions,
	}

	res, err := engine.Update(p, policy, f, opts)
	if err != nil {
		return err
	}

	// A refresh that found nothing modified offers the full-sync fallback.
	if res.FallbackSuggested && policy == syncer.PolicyRefresh {
		display.PrintPassResult(out, res)
		if confirm(in, out, "Run a full sync instead?", false) {
			res, err = engine.Update(p, syncer.PolicyFull, f, opts)
			if err != nil {
				return err
			}
		}
	}

	display.PrintPassResult(out, res)
	return nil
}

// choosePicks resolves the selective subset, either from the --pick flag or
// by prompting for pick-list numbers.
func choosePicks(in io.Reader, out io.Writer, entries []syncer.PickEntry, pickFlag string) []string {
	raw := pickFlag
	if raw == "" {
		fmt.Fprintf(out, "Select entries (comma-separated numbers, empty to cancel): ")
		reader := bufio.NewReader(in)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		raw = line
	}

	var chosen []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > len(entries) {
			fmt.Fprintf(out, "ignoring invalid selection %q\n", part)
			continue
		}
		chosen = append(chosen, entries[n-1].Key)
	}
	return chosen
}
