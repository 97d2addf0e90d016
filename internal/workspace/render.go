package workspace

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/gather/internal/models"
)

// RenderStructure produces the human-readable directory-structure view from
// a project's file records. The output is fully deterministic for a given
// record set: directories, basenames, mapping rows, and extension counts all
// sort on stable keys, so re-rendering an unchanged project yields identical
// text.
func RenderStructure(p *models.Project) string {
	var b strings.Builder

	records := sortedRecords(p)

	b.WriteString("Files by original directory:\n\n")
	writeGroupedFiles(&b, records)

	b.WriteString("\nNote: files are stored flat inside the workspace directory.\n")
	b.WriteString("The original hierarchy survives only through the mapping below.\n")

	b.WriteString("\nFile Mapping (Original Path -> Project Path):\n\n")
	writeMapping(&b, records)

	b.WriteString("\nReference Mapping - always reference files by their ORIGINAL path,\n")
	b.WriteString("never by the flattened project name:\n\n")
	writeMapping(&b, records)

	b.WriteString("\nStatistics:\n")
	fmt.Fprintf(&b, "  Total files: %d\n", len(records))
	writeExtensionBreakdown(&b, records)

	return b.String()
}

// sortedRecords orders records by original directory, then basename, which
// is the grouping order every section renders in.
func sortedRecords(p *models.Project) []*models.FileRecord {
	records := make([]*models.FileRecord, 0, len(p.Files))
	for _, rec := range p.Files {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].OriginalDirectory != records[j].OriginalDirectory {
			return records[i].OriginalDirectory < records[j].OriginalDirectory
		}
		return filepath.Base(records[i].FullOriginalPath) < filepath.Base(records[j].FullOriginalPath)
	})
	return records
}

func writeGroupedFiles(b *strings.Builder, records []*models.FileRecord) {
	currentDir := ""
	first := true
	for _, rec := range records {
		if first || rec.OriginalDirectory != currentDir {
			if !first {
				b.WriteString("\n")
			}
			currentDir = rec.OriginalDirectory
			fmt.Fprintf(b, "%s:\n", currentDir)
			first = false
		}
		fmt.Fprintf(b, "  %s\n", filepath.Base(rec.FullOriginalPath))
	}
}

func writeMapping(b *strings.Builder, records []*models.FileRecord) {
	sorted := make([]*models.FileRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FullOriginalPath < sorted[j].FullOriginalPath
	})
	for _, rec := range sorted {
		fmt.Fprintf(b, "%s -> %s\n", rec.FullOriginalPath, rec.NewPath)
	}
}

// writeExtensionBreakdown emits extension counts by descending frequency,
// ties broken lexically. Extensionless files count under "(none)".
func writeExtensionBreakdown(b *strings.Builder, records []*models.FileRecord) {
	counts := make(map[string]int)
	for _, rec := range records {
		ext := strings.ToLower(filepath.Ext(rec.FullOriginalPath))
		if ext == "" {
			ext = "(none)"
		}
		counts[ext]++
	}

	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if counts[exts[i]] != counts[exts[j]] {
			return counts[exts[i]] > counts[exts[j]]
		}
		return exts[i] < exts[j]
	})

	for _, ext := range exts {
		fmt.Fprintf(b, "  %s: %d\n", ext, counts[ext])
	}
}
