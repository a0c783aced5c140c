package pipeline

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// IsHTMLInput reports whether the file name is rewritten by the batch:
// .html and .htm files, optionally gzip-compressed.
func IsHTMLInput(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".gz")
	return strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm")
}

// OutputPath maps a path relative to the input root to the slash-separated
// output path. Compressed inputs are written uncompressed.
func OutputPath(relativePath string) (string, error) {
	p := path.Clean(filepath.ToSlash(relativePath))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return "", fmt.Errorf("path %q escapes the input root", relativePath)
	}
	return stripGzipExt(p), nil
}

// ConvertSymlinkTarget rewrites a relative link target so that it points at
// the rewritten output of its target.
func ConvertSymlinkTarget(target string) string {
	return stripGzipExt(path.Clean(filepath.ToSlash(target)))
}

func stripGzipExt(p string) string {
	if before, ok := strings.CutSuffix(p, ".gz"); ok && IsHTMLInput(p) {
		return before
	}
	return p
}
