// Package fileutil provides the file copy and stat helpers used when
// materializing collected files inside a workspace directory.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// StatInfo is the subset of stat data change detection cares about.
type StatInfo struct {
	Size    int64
	ModTime time.Time
}

// Stat returns size and modification time for a regular file.
func Stat(path string) (StatInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return StatInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return StatInfo{}, fmt.Errorf("stat %s: is a directory", path)
	}
	return StatInfo{Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Exists reports whether a path exists at all.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyFile streams src into dst via a temporary file in dst's directory,
// then renames it into place. Readers of dst never observe a partial copy.
// The destination directory must already exist.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %s: %w", src, err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".copy-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename into %s: %w", dst, err)
	}
	tmp = nil
	return nil
}
