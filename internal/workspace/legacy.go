package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/gather/internal/models"
)

// The legacy tier is one consolidated JSON blob holding every project that
// a pre-sqlite gather installation ever collected. It is read-only here:
// a successful legacy load migrates the project forward, after which the
// blob is never consulted again for that project.

type legacyFile struct {
	OriginalPath      string `json:"original_path"`
	FullOriginalPath  string `json:"full_original_path"`
	NewPath           string `json:"new_path"`
	OriginalDirectory string `json:"original_directory"`
	Size              int64  `json:"size"`
	Mtime             string `json:"mtime"`
}

type legacyProject struct {
	CreatedAt         string       `json:"created_at"`
	LastUpdated       string       `json:"last_updated"`
	SourceDirectories []string     `json:"source_directories"`
	Files             []legacyFile `json:"files"`
}

// LoadLegacyProject reads one project out of the consolidated blob at path.
// ok is false when the blob or the project is absent; a malformed blob is
// an error the caller treats as a soft tier failure.
func LoadLegacyProject(path, name string) (*models.Project, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read legacy blob: %w", err)
	}

	var blob map[string]legacyProject
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, false, fmt.Errorf("parse legacy blob: %w", err)
	}

	entry, exists := blob[name]
	if !exists {
		return nil, false, nil
	}

	p := &models.Project{
		Name:              name,
		CreatedAt:         entry.CreatedAt,
		LastUpdated:       entry.LastUpdated,
		SourceDirectories: entry.SourceDirectories,
		Files:             make(map[string]*models.FileRecord, len(entry.Files)),
	}
	for _, lf := range entry.Files {
		rec := &models.FileRecord{
			OriginalPath:      lf.OriginalPath,
			FullOriginalPath:  lf.FullOriginalPath,
			NewPath:           lf.NewPath,
			OriginalDirectory: lf.OriginalDirectory,
			Size:              lf.Size,
			Mtime:             lf.Mtime,
		}
		// Oldest records predate absolute-path tracking; re-derive what we
		// can so downstream grouping still works.
		if rec.OriginalDirectory == "" && rec.FullOriginalPath != "" {
			rec.OriginalDirectory = filepath.Dir(rec.FullOriginalPath)
		}
		key := rec.FullOriginalPath
		if key == "" {
			key = rec.OriginalPath
		}
		p.Files[key] = rec
	}

	return p, true, nil
}
