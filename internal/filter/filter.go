// Package filter decides which files and directories participate in a scan.
// Decisions are pure functions over the configured extension allow/deny
// lists and excluded directory names; no I/O happens here.
package filter

import (
	"path/filepath"
	"strings"
)

// PathFilter holds normalized filter configuration for one scan.
type PathFilter struct {
	// include is nil when every extension is allowed.
	include map[string]bool
	exclude map[string]bool

	// excludeDirs holds directory base names that prune the walk.
	excludeDirs []string
}

// New builds a PathFilter. includeExtensions may be nil, meaning "all
// extensions". Extensions are normalized to lowercase with a leading dot;
// the empty string stands for extensionless files and passes through
// normalization untouched.
func New(includeExtensions []string, excludeExtensions []string, excludeDirNames []string) *PathFilter {
	f := &PathFilter{
		exclude:     normalizeExtensions(excludeExtensions),
		excludeDirs: append([]string(nil), excludeDirNames...),
	}
	if includeExtensions != nil {
		f.include = normalizeExtensions(includeExtensions)
	}
	return f
}

// normalizeExtensions lowercases and dot-prefixes each extension.
func normalizeExtensions(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m[ext] = true
	}
	return m
}

// IncludeFile reports whether a file with the given extension should be
// collected. ext is expected with its leading dot, or "" for extensionless
// files; matching is case-insensitive.
func (f *PathFilter) IncludeFile(ext string) bool {
	ext = strings.ToLower(ext)
	if f.exclude[ext] {
		return false
	}
	if f.include == nil {
		return true
	}
	return f.include[ext]
}

// IncludePath applies IncludeFile to a path's extension.
func (f *PathFilter) IncludePath(path string) bool {
	return f.IncludeFile(filepath.Ext(path))
}

// ExcludeDir reports whether a directory with the given base name should be
// pruned. A directory is excluded when its name exactly equals an excluded
// name, or starts with an excluded name followed by a path separator (so
// "vendor" also prunes a pre-joined "vendor/bundle" name).
func (f *PathFilter) ExcludeDir(name string) bool {
	for _, excluded := range f.excludeDirs {
		if name == excluded {
			return true
		}
		if strings.HasPrefix(name, excluded+"/") || strings.HasPrefix(name, excluded+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
