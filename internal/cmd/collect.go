package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/gather/internal/display"
	"github.com/harrison/gather/internal/filter"
	"github.com/harrison/gather/internal/models"
	"github.com/harrison/gather/internal/scanner"
	"github.com/harrison/gather/internal/syncer"
)

// NewCollectCommand creates the 'gather collect' command.
func NewCollectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <project> <path>...",
		Short: "Collect files or directory trees into a project workspace",
		Long: `Collect scans the given paths (files or directories), copies every file
passing the extension filters into the project's workspace under a
flattened name, and records the original-to-flattened mapping. Directory
paths are registered as source directories for later re-synchronization.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runCollect,
	}

	cmd.Flags().String("include", "", "comma-separated extension allow-list (default: config, then all)")
	cmd.Flags().String("exclude", "", "comma-separated extension deny-list")
	cmd.Flags().String("exclude-dir", "", "comma-separated directory names to prune")
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
	projectName := args[0]
	paths := args[1:]

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	// Precondition: every requested root must exist before any work starts.
	roots := make([]scanner.Root, 0, len(paths))
	for _, path := range paths {
		root, err := scanner.StatRoot(path)
		if err != nil {
			return err
		}
		roots = append(roots, root)
	}

	p, err := a.store.Load(projectName)
	if err != nil {
		return err
	}

	f, err := buildFilter(cmd, a)
	if err != nil {
		return err
	}

	assumeYes, _ := cmd.Flags().GetBool("yes")
	out := cmd.OutOrStdout()

	engine := syncer.New(a.store, a.log)
	res, err := engine.Collect(p, roots, f, syncer.Options{
		Confirm: func(cs *models.ChangeSet) bool {
			display.PrintChangeSet(out, cs)
			return confirm(cmd.InOrStdin(), out, fmt.Sprintf("Copy %d file(s) into %s?", len(cs.New)+len(cs.Modified), projectName), assumeYes)
		},
		Disambiguate: a.cfg.DisambiguateCollisions,
	})
	if err != nil {
		return err
	}

	display.PrintPassResult(out, res)
	return nil
}

// buildFilter assembles the scan filter from flags, falling back to config
// defaults for anything unset.
func buildFilter(cmd *cobra.Command, a *app) (*filter.PathFilter, error) {
	includeFlag, _ := cmd.Flags().GetString("include")
	excludeFlag, _ := cmd.Flags().GetString("exclude")
	excludeDirFlag, _ := cmd.Flags().GetString("exclude-dir")

	include := a.cfg.IncludeExtensions
	if cmd.Flags().Changed("include") {
		include = splitList(includeFlag)
	}
	exclude := a.cfg.ExcludeExtensions
	if cmd.Flags().Changed("exclude") {
		exclude = splitList(excludeFlag)
	}
	excludeDirs := a.cfg.ExcludeDirNames
	if cmd.Flags().Changed("exclude-dir") {
		excludeDirs = splitList(excludeDirFlag)
	}

	return filter.New(include, exclude, excludeDirs), nil
}
