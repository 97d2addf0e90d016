package workspace

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harrison/gather/internal/models"
)

// Durable-tier document markers. Stable once chosen: old documents must
// keep parsing forever.
const (
	markerProject    = "# Project: "
	markerUpdated    = "# Last Updated: "
	markerSourceDirs = "# Source Directories: "
	markerMapping    = "# File Mapping"
	markerStructure  = "# Directory Structure"

	mappingArrow     = " -> "
	sourceDirsSep    = ", "
	structureSection = markerStructure + "\n"
)

// RenderDocument serializes a project into the durable-tier text document.
// Mapping rows sort by original path, so two renders of an unmutated
// project differ only in the Last Updated line.
func RenderDocument(p *models.Project) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s%s\n", markerProject, p.Name)
	fmt.Fprintf(&b, "%s%s\n", markerUpdated, p.LastUpdated)
	fmt.Fprintf(&b, "%s%s\n", markerSourceDirs, strings.Join(p.SourceDirectories, sourceDirsSep))
	b.WriteString("\n")

	b.WriteString(markerMapping + " (Original Path -> Project Path)\n\n")
	keys := make([]string, 0, len(p.Files))
	for key := range p.Files {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rec := p.Files[key]
		fmt.Fprintf(&b, "%s%s%s\n", rec.FullOriginalPath, mappingArrow, rec.NewPath)
	}
	b.WriteString("\n")

	b.WriteString(structureSection)
	b.WriteString("\n")
	b.WriteString(p.DirectoryStructure)
	if p.DirectoryStructure != "" && !strings.HasSuffix(p.DirectoryStructure, "\n") {
		b.WriteString("\n")
	}

	return b.String()
}

// parserState is the mode of the line-oriented document parser.
type parserState int

const (
	stateHeader parserState = iota
	stateMapping
	stateStructure
)

// ParseDocument reconstructs a project from durable-tier text. The parser
// is a three-state line machine (header, mapping, structure). It tolerates
// absent sections, stray blank lines, and entirely empty input; mapping
// lines without the arrow delimiter are ignored rather than fatal. The
// source-directories line is honored in any state.
func ParseDocument(text string) *models.Project {
	p := &models.Project{
		Files: make(map[string]*models.FileRecord),
	}

	state := stateHeader
	var structureLines []string

	for _, line := range strings.Split(text, "\n") {
		// Recognized regardless of the current state.
		if strings.HasPrefix(line, markerSourceDirs) {
			p.SourceDirectories = parseSourceDirs(strings.TrimPrefix(line, markerSourceDirs))
			continue
		}

		switch state {
		case stateHeader:
			switch {
			case strings.HasPrefix(line, markerProject):
				p.Name = strings.TrimSpace(strings.TrimPrefix(line, markerProject))
			case strings.HasPrefix(line, markerUpdated):
				p.LastUpdated = strings.TrimSpace(strings.TrimPrefix(line, markerUpdated))
			case strings.HasPrefix(line, markerStructure):
				state = stateStructure
			case strings.HasPrefix(line, markerMapping):
				state = stateMapping
			}

		case stateMapping:
			if strings.HasPrefix(line, markerStructure) {
				state = stateStructure
				continue
			}
			if rec, ok := parseMappingLine(line); ok {
				p.Files[rec.FullOriginalPath] = rec
			}

		case stateStructure:
			structureLines = append(structureLines, line)
		}
	}

	// The renderer writes one blank separator line after the structure
	// marker; strip it along with trailing emptiness so the round-tripped
	// value matches what was rendered.
	for len(structureLines) > 0 && structureLines[0] == "" {
		structureLines = structureLines[1:]
	}
	for len(structureLines) > 0 && structureLines[len(structureLines)-1] == "" {
		structureLines = structureLines[:len(structureLines)-1]
	}
	if len(structureLines) > 0 {
		p.DirectoryStructure = strings.Join(structureLines, "\n") + "\n"
	}

	return p
}

// parseMappingLine turns "fullOriginalPath -> newPath" into a partial
// record. Basename and parent directory re-derive from the absolute path;
// size and mtime are unknown at this tier (empty mtime classifies as
// modified on the next sync, which is the safe direction).
func parseMappingLine(line string) (*models.FileRecord, bool) {
	if !strings.Contains(line, mappingArrow) {
		return nil, false
	}
	parts := strings.SplitN(line, mappingArrow, 2)
	original := strings.TrimSpace(parts[0])
	flattened := strings.TrimSpace(parts[1])
	if original == "" || flattened == "" {
		return nil, false
	}
	return &models.FileRecord{
		OriginalPath:      filepath.Base(original),
		FullOriginalPath:  original,
		NewPath:           flattened,
		OriginalDirectory: filepath.Dir(original),
	}, true
}

func parseSourceDirs(value string) []string {
	var dirs []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			dirs = append(dirs, part)
		}
	}
	return dirs
}
