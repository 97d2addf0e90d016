package models

import "time"

// FileStatus classifies one source path relative to its recorded state.
type FileStatus string

const (
	StatusNew       FileStatus = "new"
	StatusModified  FileStatus = "modified"
	StatusUnchanged FileStatus = "unchanged"
	StatusMissing   FileStatus = "missing"
)

// Candidate is a freshly scanned source file plus its current stat data.
type Candidate struct {
	// AbsolutePath is the resolved absolute path of the source file.
	AbsolutePath string

	// RelativePath is the path relative to the scan root that produced it.
	// Empty for re-stat candidates derived from existing records.
	RelativePath string

	Size    int64
	ModTime time.Time
}

// ChangeSet is the output of change detection: four disjoint sets that
// together partition the union of recorded and candidate keys. All slices
// are sorted by key for deterministic reporting.
type ChangeSet struct {
	New       []string
	Modified  []string
	Unchanged []string
	Missing   []string
}

// Total returns the number of classified keys.
func (c *ChangeSet) Total() int {
	return len(c.New) + len(c.Modified) + len(c.Unchanged) + len(c.Missing)
}

// Actionable reports whether the set proposes any copy work at all.
func (c *ChangeSet) Actionable() bool {
	return len(c.New) > 0 || len(c.Modified) > 0
}
