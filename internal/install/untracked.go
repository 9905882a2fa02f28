package install

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rpodgorny/atxpkg/internal/db"
)

// Untracked walks each of paths (relative to prefix) and returns the
// entries found there that no installed package claims. If paths is
// empty, it is inferred as the set of distinct top-level path
// components across every package's manifest (§4.9).
func (e *Engine) Untracked(d db.DB, paths []string) ([]string, error) {
	owned := make(map[string]bool)
	topLevel := make(map[string]bool)
	for _, pkg := range d {
		for p := range pkg.MD5Sums {
			owned[p] = true
			if i := strings.IndexByte(p, '/'); i >= 0 {
				topLevel[p[:i]] = true
			} else {
				topLevel[p] = true
			}
		}
	}

	if len(paths) == 0 {
		for p := range topLevel {
			paths = append(paths, p)
		}
	}

	var result []string
	for _, root := range paths {
		absRoot := filepath.Join(e.Prefix, filepath.FromSlash(root))
		err := filepath.WalkDir(absRoot, func(path string, de fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == absRoot {
				return nil
			}
			rel, err := filepath.Rel(e.Prefix, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if de.IsDir() {
				if owned[rel] {
					return nil
				}
				// an unowned directory is reported, but its contents
				// are still worth listing individually
				result = append(result, rel)
				return nil
			}
			if !owned[rel] && !strings.HasSuffix(rel, ".atxpkg_backup") &&
				!strings.HasSuffix(rel, ".atxpkg_save") && !strings.HasSuffix(rel, ".atxpkg_new") {
				result = append(result, rel)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
