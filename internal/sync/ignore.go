package sync

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/webotron/webotron/internal/utils"
)

// IgnoreFileName holds extra ignore rules at the root of the synced
// directory, one gitignore-style pattern per line.
const IgnoreFileName = ".webotronignore"

var defaultIgnoreLines = []string{
	// never ship the ignore file itself
	IgnoreFileName,
	// VCS
	".git",
	".svn",
	".hg",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
	// editor droppings
	"*.swp",
	"*~",
}

// IgnoreList decides which relative keys stay local. It merges the built-in
// rules, the root's ignore file and any --exclude globs from the command line.
type IgnoreList struct {
	baseDir  string
	excludes []string
	ignore   *gitignore.GitIgnore
}

func NewIgnoreList(baseDir string, excludes ...string) *IgnoreList {
	return &IgnoreList{baseDir: baseDir, excludes: excludes}
}

func (l *IgnoreList) Load() error {
	for _, pattern := range l.excludes {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	ignorePath := filepath.Join(l.baseDir, IgnoreFileName)
	ignoreLines := defaultIgnoreLines

	// read the ignore file if it exists
	if utils.FileExists(ignorePath) {
		rules := 0
		file, err := os.Open(ignorePath)
		if err != nil {
			slog.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		} else {
			defer file.Close()

			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := scanner.Text()
				if line != "" {
					ignoreLines = append(ignoreLines, line)
					rules++
				}
			}

			if err := scanner.Err(); err != nil {
				slog.Warn("error reading ignore file", "path", ignorePath, "error", err)
			} else {
				slog.Debug("loaded ignore file", "path", ignorePath, "rules", rules)
			}
		}
	}

	l.ignore = gitignore.CompileIgnoreLines(ignoreLines...)
	return nil
}

// ShouldIgnore matches a slash-separated relative key against the loaded
// rules. Load must be called first.
func (l *IgnoreList) ShouldIgnore(key string) bool {
	if l.ignore != nil && l.ignore.MatchesPath(key) {
		return true
	}
	for _, pattern := range l.excludes {
		if ok, _ := doublestar.Match(pattern, key); ok {
			return true
		}
	}
	return false
}
