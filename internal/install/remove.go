package install

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg"
	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/digest"
)

// Remove deletes each named package's files and directories from
// prefix and drops its entry from d. Backup-listed files whose
// on-disk digest no longer matches the recorded one are preserved as
// <path>.atxpkg_backup instead of being deleted (§4.7).
func (e *Engine) Remove(d db.DB, names []string, opt Options) error {
	if err := e.checkPrecondition(d, opt); err != nil {
		return err
	}

	for _, name := range names {
		if _, ok := d[name]; !ok {
			return xerrors.Errorf("%s: %w", name, atxpkg.ErrNotInstalled)
		}
	}

	for _, name := range names {
		fmt.Printf("remove %s-%s\n", name, d[name].Version)
	}
	if !e.confirm(opt, "continue?", false) {
		return atxpkg.ErrUserAborted
	}

	for _, name := range names {
		pkg := d[name]
		if err := e.removeOne(name, pkg); err != nil {
			return xerrors.Errorf("removing %s: %w", name, err)
		}
		delete(d, name)
		fmt.Printf("%s removed\n", name)
	}
	return nil
}

func (e *Engine) removeOne(name string, pkg db.InstalledPackage) error {
	var files, dirs []string
	for p, sum := range pkg.MD5Sums {
		if sum == nil {
			dirs = append(dirs, p)
		} else {
			files = append(files, p)
		}
	}
	sort.Strings(files)

	backupSet := make(map[string]bool, len(pkg.Backup))
	for _, b := range pkg.Backup {
		backupSet[b] = true
	}

	prog := e.progress(name, len(files)+len(dirs))
	defer prog.Finish()

	for _, f := range files {
		target := filepath.Join(e.Prefix, filepath.FromSlash(f))
		if _, err := os.Stat(target); os.IsNotExist(err) {
			log.Printf("%s: already missing, skipping", target)
			prog.Add(1)
			continue
		}
		if backupSet[f] {
			sumCurrent, err := digest.MD5File(target)
			if err != nil {
				return err
			}
			sumRecorded := pkg.MD5Sums[f]
			if sumRecorded == nil || sumCurrent != *sumRecorded {
				log.Printf("keeping changed %s as %s.atxpkg_backup", target, target)
				if err := digest.MoveFile(target, target+".atxpkg_backup"); err != nil {
					return err
				}
				prog.Add(1)
				continue
			}
		}
		if err := digest.SafeDelete(target); err != nil {
			return err
		}
		prog.Add(1)
	}

	removeEmptyDirs(e.Prefix, dirs, prog)
	return nil
}
