package collections

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RewritePaths walks the collection root and replaces the old path
// prefix with the new one inside every regular file. Collection
// definitions embed physical media paths as plain text, so a straight
// textual replacement matches what the server wrote. Returns the number
// of files changed. A missing collection root is a no-op.
func RewritePaths(root, oldPrefix, newPrefix string) (int, error) {
	changed := 0
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rewritten, err := rewriteFile(path, oldPrefix, newPrefix)
		if err != nil {
			return err
		}
		if rewritten {
			changed++
		}
		return nil
	})
	if err != nil {
		return changed, fmt.Errorf("rewrite collection files under %s: %w", root, err)
	}
	return changed, nil
}

func rewriteFile(path, oldPrefix, newPrefix string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)
	if !strings.Contains(text, oldPrefix) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	updated := strings.ReplaceAll(text, oldPrefix, newPrefix)
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
