// Package syncer implements change detection and the synchronization pass
// state machine over a project workspace.
package syncer

import (
	"sort"

	"github.com/harrison/gather/internal/models"
)

// Classify partitions the union of recorded and candidate keys into the
// four change sets. Rules:
//   - candidate without a record: new
//   - record without a candidate: missing (the source is unreachable)
//   - both present: modified when size differs or the current mtime is
//     strictly newer; a record with no parseable mtime is always modified,
//     never unchanged; otherwise unchanged
//
// Output slices are sorted so reports and tests are deterministic. Missing
// records are classification only; nothing here deletes them.
func Classify(existing map[string]*models.FileRecord, candidates map[string]models.Candidate) *models.ChangeSet {
	cs := &models.ChangeSet{}

	for key, cand := range candidates {
		rec, known := existing[key]
		if !known {
			cs.New = append(cs.New, key)
			continue
		}
		if isModified(rec, cand) {
			cs.Modified = append(cs.Modified, key)
		} else {
			cs.Unchanged = append(cs.Unchanged, key)
		}
	}

	for key := range existing {
		if _, present := candidates[key]; !present {
			cs.Missing = append(cs.Missing, key)
		}
	}

	sort.Strings(cs.New)
	sort.Strings(cs.Modified)
	sort.Strings(cs.Unchanged)
	sort.Strings(cs.Missing)
	return cs
}

func isModified(rec *models.FileRecord, cand models.Candidate) bool {
	if cand.Size != rec.Size {
		return true
	}
	recorded, ok := rec.ModTime()
	if !ok {
		// No trustworthy metadata: err toward re-sync.
		return true
	}
	return cand.ModTime.After(recorded)
}
