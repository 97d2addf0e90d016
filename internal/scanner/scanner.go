// Package scanner walks source roots and produces the candidate files for
// collection, together with the path flattening used for workspace storage
// names.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/harrison/gather/internal/filter"
)

// RootKind distinguishes explicitly named files from directory trees.
type RootKind string

const (
	RootFile      RootKind = "file"
	RootDirectory RootKind = "directory"
)

// Root is one scan root. Kind is decided by the caller from a prior stat;
// the scanner does not re-infer it.
type Root struct {
	Path string
	Kind RootKind
}

// ScannedFile is one emitted candidate: the resolved absolute path plus the
// path relative to the root that produced it.
type ScannedFile struct {
	AbsolutePath string
	RelativePath string
}

// Result is the outcome of scanning one or more roots. Warnings hold
// per-path problems (typically unreadable subdirectories) that were skipped
// without aborting the scan.
type Result struct {
	Files    []ScannedFile
	Warnings []string
}

// Scan walks every root in order, applying the filter. Files under a
// directory root are emitted in the lexical per-directory order of
// filepath.WalkDir, so output is deterministic for a given tree. Excluded
// directories are pruned before descent; symlinked directories are not
// followed.
func Scan(roots []Root, f *filter.PathFilter) (*Result, error) {
	result := &Result{}
	for _, root := range roots {
		switch root.Kind {
		case RootFile:
			scanFileRoot(root.Path, f, result)
		case RootDirectory:
			if err := scanDirRoot(root.Path, f, result); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown root kind %q for %s", root.Kind, root.Path)
		}
	}
	return result, nil
}

// scanFileRoot applies the extension checks to one explicitly named file.
// Directory exclusions do not apply to a file the caller asked for by name.
func scanFileRoot(path string, f *filter.PathFilter, result *Result) {
	if !f.IncludePath(path) {
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("resolve %s: %v", path, err))
		return
	}
	result.Files = append(result.Files, ScannedFile{
		AbsolutePath: abs,
		RelativePath: filepath.Base(path),
	})
}

func scanDirRoot(dir string, f *filter.PathFilter, result *Result) error {
	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve root %s: %w", dir, err)
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are reported and skipped, not fatal.
			result.Warnings = append(result.Warnings, fmt.Sprintf("access %s: %v", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if f.ExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !f.IncludePath(path) {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("relativize %s: %v", path, err))
			return nil
		}
		result.Files = append(result.Files, ScannedFile{
			AbsolutePath: path,
			RelativePath: rel,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", absRoot, err)
	}
	return nil
}

// StatRoot classifies a path into a typed Root, surfacing nonexistent or
// inaccessible paths as errors. Commands call this at registration time so
// bad roots fail before any scan starts.
func StatRoot(path string) (Root, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Root{}, fmt.Errorf("stat root %s: %w", path, err)
	}
	kind := RootFile
	if info.IsDir() {
		kind = RootDirectory
	}
	return Root{Path: path, Kind: kind}, nil
}
