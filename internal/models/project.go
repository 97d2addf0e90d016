// Package models defines the core data types for gather project workspaces:
// the Project entity, per-file records, and change classification results.
package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the wire format for all persisted timestamps.
const TimestampLayout = time.RFC3339

// MtimeLayout is the wire format for recorded source-file modification
// times. Nanosecond precision is kept so an exact stat round-trip compares
// equal.
const MtimeLayout = time.RFC3339Nano

// FileRecord describes one collected file: where it came from and where it
// lives inside the workspace.
type FileRecord struct {
	// OriginalPath is the path relative to the scan root at collection time.
	OriginalPath string `json:"originalPath"`

	// FullOriginalPath is the absolute source path at collection time.
	// It is the identity key for change detection across re-syncs.
	FullOriginalPath string `json:"fullOriginalPath"`

	// NewPath is the flattened storage name inside the workspace directory.
	NewPath string `json:"newPath"`

	// OriginalDirectory is the absolute parent directory of FullOriginalPath.
	OriginalDirectory string `json:"originalDirectory"`

	// Size is the source file's byte length at the last successful copy.
	Size int64 `json:"size"`

	// Mtime is the source file's modification time at the last successful
	// copy, in MtimeLayout. Empty or unparseable values mean the record has
	// no trustworthy metadata and must be treated as modified.
	Mtime string `json:"mtime"`
}

// ModTime parses the recorded mtime. ok is false when the record carries no
// usable modification time.
func (r *FileRecord) ModTime() (time.Time, bool) {
	if r.Mtime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(MtimeLayout, r.Mtime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Project is one named workspace. Name doubles as the on-disk directory
// name and is immutable after creation.
type Project struct {
	Name        string `json:"name"`
	CreatedAt   string `json:"createdAt"`
	LastUpdated string `json:"lastUpdated"`

	// SourceDirectories holds the absolute paths previously registered as
	// scan roots, in registration order, deduplicated. It is never
	// re-derived from Files.
	SourceDirectories []string `json:"sourceDirectories"`

	// Files is keyed by FullOriginalPath.
	Files map[string]*FileRecord `json:"files"`

	// DirectoryStructure is a derived text view, rebuilt from Files on
	// every save. Never hand-edited.
	DirectoryStructure string `json:"-"`

	// Instructions is opaque free text, round-tripped verbatim.
	Instructions string `json:"-"`
}

// NewProject creates an empty project stamped with the given creation time.
func NewProject(name string, now time.Time) *Project {
	ts := now.Format(TimestampLayout)
	return &Project{
		Name:        name,
		CreatedAt:   ts,
		LastUpdated: ts,
		Files:       make(map[string]*FileRecord),
	}
}

// Validate checks structural consistency of the project.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	for key, rec := range p.Files {
		if rec == nil {
			return fmt.Errorf("nil file record for %q", key)
		}
		if rec.NewPath == "" {
			return fmt.Errorf("file record %q has no storage name", key)
		}
	}
	return nil
}

// AddFiles merges records into the project, keyed by FullOriginalPath
// (falling back to OriginalPath for records that predate absolute-path
// tracking). Existing records with the same key are replaced.
func (p *Project) AddFiles(records []*FileRecord) {
	if p.Files == nil {
		p.Files = make(map[string]*FileRecord, len(records))
	}
	for _, rec := range records {
		key := rec.FullOriginalPath
		if key == "" {
			key = rec.OriginalPath
		}
		p.Files[key] = rec
	}
}

// AddSourceDirectory registers a scan root, preserving order and dropping
// duplicates.
func (p *Project) AddSourceDirectory(dir string) {
	for _, existing := range p.SourceDirectories {
		if existing == dir {
			return
		}
	}
	p.SourceDirectories = append(p.SourceDirectories, dir)
}

// SetInstructions replaces the free-text instructions.
func (p *Project) SetInstructions(text string) {
	p.Instructions = text
}

// SetDirectoryStructure replaces the derived structure rendering.
func (p *Project) SetDirectoryStructure(text string) {
	p.DirectoryStructure = text
}

// Touch refreshes LastUpdated. Called by the store on successful save.
func (p *Project) Touch(now time.Time) {
	p.LastUpdated = now.Format(TimestampLayout)
}
