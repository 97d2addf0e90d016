// Package display formats change sets, pick lists, and project summaries
// for the terminal.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/gather/internal/models"
	"github.com/harrison/gather/internal/syncer"
	"github.com/harrison/gather/internal/workspace"
)

// useColor reports whether w is a terminal worth coloring.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintChangeSet writes the classified change summary, one section per
// non-empty status.
func PrintChangeSet(w io.Writer, cs *models.ChangeSet) {
	colored := useColor(w)

	section := func(label string, keys []string, c *color.Color) {
		if len(keys) == 0 {
			return
		}
		if colored {
			fmt.Fprintf(w, "%s (%d):\n", c.Sprint(label), len(keys))
		} else {
			fmt.Fprintf(w, "%s (%d):\n", label, len(keys))
		}
		for _, key := range keys {
			fmt.Fprintf(w, "  %s\n", key)
		}
	}

	section("New", cs.New, color.New(color.FgGreen))
	section("Modified", cs.Modified, color.New(color.FgYellow))
	section("Missing", cs.Missing, color.New(color.FgRed))

	if len(cs.Unchanged) > 0 {
		fmt.Fprintf(w, "Unchanged: %d file(s)\n", len(cs.Unchanged))
	}
	if cs.Total() == 0 {
		fmt.Fprintln(w, "No files classified.")
	}
}

// PrintPickList writes the numbered selective-update pick list.
func PrintPickList(w io.Writer, entries []syncer.PickEntry) {
	colored := useColor(w)
	for i, entry := range entries {
		status := string(entry.Status)
		if colored {
			switch entry.Status {
			case models.StatusModified:
				status = color.YellowString(status)
			case models.StatusMissing:
				status = color.RedString(status)
			}
		}
		fmt.Fprintf(w, "%3d. [%s] %s\n", i+1, status, entry.Key)
	}
}

// PrintPassResult summarizes a finished pass.
func PrintPassResult(w io.Writer, res *syncer.Result) {
	switch res.State {
	case syncer.StatePersisted:
		fmt.Fprintf(w, "Copied %d file(s)", len(res.Copied))
		if len(res.Failed) > 0 {
			fmt.Fprintf(w, ", %d failed", len(res.Failed))
		}
		if len(res.SkippedMissing) > 0 {
			fmt.Fprintf(w, ", %d skipped (missing source)", len(res.SkippedMissing))
		}
		fmt.Fprintln(w, ".")
	case syncer.StateAborted:
		if res.FallbackSuggested {
			fmt.Fprintln(w, "Nothing modified.")
		} else {
			fmt.Fprintln(w, "No changes applied.")
		}
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

// PrintProjectSummaries writes the project listing table.
func PrintProjectSummaries(w io.Writer, summaries []workspace.ProjectSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No projects.")
		return
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%-24s %5d file(s)  updated %s\n", s.Name, s.FileCount, s.LastUpdated)
	}
}

// PrintProject writes one project's summary header.
func PrintProject(w io.Writer, p *models.Project) {
	fmt.Fprintf(w, "Project:      %s\n", p.Name)
	fmt.Fprintf(w, "Created:      %s\n", p.CreatedAt)
	fmt.Fprintf(w, "Last updated: %s\n", p.LastUpdated)
	fmt.Fprintf(w, "Files:        %d\n", len(p.Files))
	if len(p.SourceDirectories) > 0 {
		fmt.Fprintln(w, "Source directories:")
		for _, dir := range p.SourceDirectories {
			fmt.Fprintf(w, "  %s\n", dir)
		}
	}
}
