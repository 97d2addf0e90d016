package scanner

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
)

// Flatten maps a root-relative path to a single-segment storage name by
// replacing every path separator with an underscore. It is total and
// deterministic; it makes no uniqueness guarantee (two different relative
// paths can flatten to the same name).
func Flatten(rel string) string {
	flat := strings.ReplaceAll(rel, "/", "_")
	if filepath.Separator != '/' {
		flat = strings.ReplaceAll(flat, string(filepath.Separator), "_")
	}
	return flat
}

// Disambiguate appends a short stable hash of the full original path to a
// flattened name, before the extension. Used only when collision handling
// is enabled and a second path flattens to an already-claimed name; the
// hash depends on fullPath alone so the result is stable across passes.
func Disambiguate(flat, fullPath string) string {
	h := fnv.New32a()
	h.Write([]byte(fullPath))
	tag := fmt.Sprintf("%08x", h.Sum32())

	ext := filepath.Ext(flat)
	base := strings.TrimSuffix(flat, ext)
	return base + "." + tag + ext
}
