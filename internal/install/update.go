package install

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg"
	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/digest"
	"github.com/rpodgorny/atxpkg/internal/repo"
)

type updatePlanEntry struct {
	spec UpdateSpec
	old  db.InstalledPackage
	url  string
}

// Update resolves each UpdateSpec against the installed database and
// the merged repository index, downloads the selected archives, and
// replaces each old package's content with the new version, applying
// the three-digest divergence rule to backup-listed files and pruning
// orphaned entries (§4.6). When bulk is set (the no-args "update
// everything" form), a spec whose package is no longer available in
// any repo is skipped with a warning instead of aborting the whole
// batch; an explicitly-named spec always fails hard.
func (e *Engine) Update(ctx context.Context, d db.DB, specs []UpdateSpec, opt Options, bulk bool) (bool, error) {
	if err := e.checkPrecondition(d, opt); err != nil {
		return false, err
	}

	plan := make([]updatePlanEntry, 0, len(specs))
	for _, spec := range specs {
		old, ok := d[spec.OldName]
		if !ok {
			return false, xerrors.Errorf("%s: %w", spec.OldName, atxpkg.ErrNotInstalled)
		}
		if spec.OldVersion == "" {
			spec.OldVersion = old.Version
		} else if spec.OldVersion != old.Version {
			return false, xerrors.Errorf("%s-%s: %w", spec.OldName, spec.OldVersion, atxpkg.ErrNotInstalled)
		}
		if spec.NewName != spec.OldName {
			if _, ok := d[spec.NewName]; ok {
				return false, xerrors.Errorf("%s: %w", spec.NewName, atxpkg.ErrAlreadyInstalled)
			}
		}
		plan = append(plan, updatePlanEntry{spec: spec, old: old})
	}

	idx, err := e.index(ctx, opt.Offline)
	if err != nil {
		return false, err
	}

	resolved := plan[:0]
	for i, p := range plan {
		if _, ok := idx[p.spec.NewName]; !ok {
			if bulk {
				log.Printf("%s: no longer available in any repository, skipping", p.spec.NewName)
				continue
			}
			return false, xerrors.Errorf("%s: %w", p.spec.NewName, atxpkg.ErrNotAvailable)
		}
		if p.spec.NewVersion == "" {
			u, v, ok := idx.Max(p.spec.NewName)
			if !ok {
				if bulk {
					log.Printf("%s: no longer available in any repository, skipping", p.spec.NewName)
					continue
				}
				return false, xerrors.Errorf("%s: %w", p.spec.NewName, atxpkg.ErrNotAvailable)
			}
			p.spec.NewVersion, plan[i].url = v, u
		} else {
			u, ok := idx.URL(p.spec.NewName, p.spec.NewVersion)
			if !ok {
				if bulk {
					log.Printf("%s-%s: no longer available in any repository, skipping", p.spec.NewName, p.spec.NewVersion)
					continue
				}
				return false, xerrors.Errorf("%s-%s: %w", p.spec.NewName, p.spec.NewVersion, atxpkg.ErrNotAvailable)
			}
			plan[i].url = u
		}
		plan[i].spec.NewVersion = p.spec.NewVersion
		resolved = append(resolved, plan[i])
	}
	plan = resolved

	if !opt.Force {
		filtered := plan[:0]
		for _, p := range plan {
			if p.spec.OldName == p.spec.NewName && p.spec.OldVersion == p.spec.NewVersion {
				continue
			}
			filtered = append(filtered, p)
		}
		plan = filtered
	}
	if len(plan) == 0 {
		fmt.Println("nothing to update")
		return false, nil
	}

	for _, p := range plan {
		fmt.Printf("update %s-%s -> %s-%s\n", p.spec.OldName, p.spec.OldVersion, p.spec.NewName, p.spec.NewVersion)
	}
	if !e.confirm(opt, "continue?", true) {
		return false, atxpkg.ErrUserAborted
	}

	urls := make([]string, len(plan))
	for i, p := range plan {
		urls[i] = p.url
	}
	localPaths, err := repo.FetchAll(ctx, e.client(opt.UnverifiedSSL), urls, e.CacheDir)
	if err != nil {
		return false, err
	}
	if opt.DownloadOnly {
		return false, nil
	}

	for i, p := range plan {
		pkg, err := e.updateOne(p.spec.NewName, p.spec.NewVersion, localPaths[i], p.old, opt.Force)
		if err != nil {
			return false, xerrors.Errorf("updating %s: %w", p.spec.OldName, err)
		}
		if p.spec.NewName != p.spec.OldName {
			delete(d, p.spec.OldName)
		}
		d[p.spec.NewName] = *pkg
		fmt.Printf("%s-%s updated to %s-%s\n", p.spec.OldName, p.spec.OldVersion, p.spec.NewName, p.spec.NewVersion)
	}
	return true, nil
}

func (e *Engine) updateOne(name, version, archivePath string, old db.InstalledPackage, force bool) (*db.InstalledPackage, error) {
	stagingDir, m, err := e.stage(archivePath)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(stagingDir)

	prog := e.progress(name, len(m.Dirs)+len(m.Files))
	defer prog.Finish()

	if !force {
		for _, f := range m.Files {
			target := filepath.Join(e.Prefix, filepath.FromSlash(f))
			if _, err := os.Stat(target); err == nil {
				if _, owned := old.MD5Sums[f]; !owned {
					return nil, xerrors.Errorf("%s: %w", target, atxpkg.ErrForeignFile)
				}
			}
		}
	}

	sums := make(map[string]*string, len(m.Dirs)+len(m.Files))
	if err := placeDirs(e.Prefix, stagingDir, m.Dirs, sums, prog); err != nil {
		return nil, err
	}

	for _, f := range m.Files {
		stagedPath := filepath.Join(stagingDir, filepath.FromSlash(f))
		sumNew, err := digest.MD5File(stagedPath)
		if err != nil {
			return nil, err
		}
		sums[f] = db.String(sumNew)

		target := filepath.Join(e.Prefix, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, err
		}

		if _, err := os.Stat(target); err == nil && m.Backup[f] {
			if sumOriginal, ok := old.MD5Sums[f]; ok && sumOriginal != nil {
				sumCurrent, err := digest.MD5File(target)
				if err != nil {
					return nil, err
				}
				if *sumOriginal != sumCurrent && sumCurrent != sumNew {
					log.Printf("sum for file %s changed, installing new version as %s.atxpkg_new", target, target)
					target += ".atxpkg_new"
				}
			}
		}

		if err := digest.MoveFile(stagedPath, target); err != nil {
			return nil, err
		}
		prog.Add(1)
	}

	var orphanDirs []string
	orphanFiles := make(map[string]string)
	for fn, sum := range old.MD5Sums {
		if _, ok := sums[fn]; ok {
			continue
		}
		if sum == nil {
			orphanDirs = append(orphanDirs, fn)
		} else {
			orphanFiles[fn] = *sum
		}
	}

	cleanupProg := e.progress(name+" cleanup", len(orphanDirs)+len(orphanFiles))
	defer cleanupProg.Finish()

	backupSet := make(map[string]bool, len(old.Backup))
	for _, b := range old.Backup {
		backupSet[b] = true
	}
	for fn, sumOld := range orphanFiles {
		target := filepath.Join(e.Prefix, filepath.FromSlash(fn))
		if _, err := os.Stat(target); os.IsNotExist(err) {
			log.Printf("file %s does not exist", target)
			cleanupProg.Add(1)
			continue
		}
		if backupSet[fn] {
			sumCurrent, err := digest.MD5File(target)
			if err != nil {
				return nil, err
			}
			if sumCurrent != sumOld {
				log.Printf("saving changed %s as %s.atxpkg_save", target, target)
				if err := digest.MoveFile(target, target+".atxpkg_save"); err != nil {
					return nil, err
				}
				cleanupProg.Add(1)
				continue
			}
		}
		if err := digest.SafeDelete(target); err != nil {
			return nil, err
		}
		cleanupProg.Add(1)
	}
	removeEmptyDirs(e.Prefix, orphanDirs, cleanupProg)

	now := time.Now().Unix()
	return &db.InstalledPackage{
		T:       &now,
		Version: version,
		MD5Sums: sums,
		Backup:  sortedKeys(m.Backup),
	}, nil
}
