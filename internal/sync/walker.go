package sync

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FileRecord describes one local file found under the sync root.
type FileRecord struct {
	// Path is the absolute local path.
	Path string
	// Key is the path relative to the root, always /-separated.
	Key string
	// Size in bytes.
	Size int64
	// ModTime of the file when scanned.
	ModTime time.Time
}

// NormKey converts a relative path into a canonical object key with forward
// slashes and no leading slash.
func NormKey(path string) string {
	path = filepath.Clean(path)
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.TrimLeft(path, "/")
}

// Walk enumerates regular files under root and calls fn with a FileRecord
// per file. Keys are computed relative to root, so root must already be
// resolved (absolute, symlinks evaluated). Directories matching the ignore
// list are pruned wholesale. The first error aborts the walk.
func Walk(root string, ignore *IgnoreList, fn func(rec *FileRecord) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("walk %s: %w", path, walkErr)
		}

		if path == root {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("walk rel path %s: %w", path, err)
		}
		key := NormKey(relPath)

		if d.IsDir() {
			if ignore != nil && ignore.ShouldIgnore(key) {
				return fs.SkipDir
			}
			return nil
		}

		// regular files only, symlinks and special files stay local
		if !d.Type().IsRegular() {
			return nil
		}

		if ignore != nil && ignore.ShouldIgnore(key) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		return fn(&FileRecord{
			Path:    path,
			Key:     key,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	})
}
