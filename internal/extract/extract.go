// Package extract unpacks package archives into a staging directory
// and reports their manifest, so install/update can diff staged
// content against the installed database before touching the prefix
// (§4.4).
package extract

import (
	"archive/zip"
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/mmap"
	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg"
)

// Manifest is the staged content inventory of an extracted archive:
// directories (ready to be created in ascending path-length order),
// files, and the backup-protected relative paths read from the
// archive's optional top-level .atxpkg_backup file.
type Manifest struct {
	Dirs   []string
	Files  []string
	Backup map[string]bool
}

// ToStaging extracts archivePath into stagingDir, which must already
// exist and be empty, and returns the resulting Manifest. Entries
// whose relative path begins ".atxpkg_" are never written to
// stagingDir; ".atxpkg_backup" itself is parsed instead.
func ToStaging(archivePath, stagingDir string) (*Manifest, error) {
	ra, err := mmap.Open(archivePath)
	if err != nil {
		return nil, xerrors.Errorf("extract: %w", err)
	}
	defer ra.Close()

	zr, err := zip.NewReader(ra, int64(ra.Len()))
	if err != nil {
		return nil, xerrors.Errorf("extract: %w: %v", atxpkg.ErrBadArchive, err)
	}

	m := &Manifest{Backup: map[string]bool{}}
	var backupFile *zip.File

	for _, f := range zr.File {
		name := path.Clean(f.Name)
		switch {
		case name == ".atxpkg_backup":
			backupFile = f
		case strings.HasPrefix(name, ".atxpkg_"):
			// never installed
		case strings.HasSuffix(f.Name, "/"):
			m.Dirs = append(m.Dirs, name)
		default:
			m.Files = append(m.Files, name)
		}
	}

	if backupFile != nil {
		backup, err := readBackupList(backupFile)
		if err != nil {
			return nil, xerrors.Errorf("extract: reading .atxpkg_backup: %w", err)
		}
		for _, p := range backup {
			m.Backup[p] = true
		}
	}

	// Shortest paths first so a directory's parent always exists by
	// the time it is created.
	sort.Slice(m.Dirs, func(i, j int) bool { return len(m.Dirs[i]) < len(m.Dirs[j]) })

	for _, dir := range m.Dirs {
		if err := os.MkdirAll(filepath.Join(stagingDir, filepath.FromSlash(dir)), 0o755); err != nil {
			return nil, xerrors.Errorf("extract: %w", err)
		}
	}

	for _, f := range zr.File {
		name := path.Clean(f.Name)
		if name == ".atxpkg_backup" || strings.HasPrefix(name, ".atxpkg_") || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if err := extractFile(f, filepath.Join(stagingDir, filepath.FromSlash(name))); err != nil {
			return nil, xerrors.Errorf("extract: %s: %w", name, err)
		}
	}

	return m, nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o755
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if mt := f.Modified; !mt.IsZero() {
		// Best-effort: some filesystems reject atime/mtime changes on
		// paths with unusual permissions.
		_ = os.Chtimes(dest, mt, mt)
	}
	return nil
}

func readBackupList(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
