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

type planEntry struct {
	spec    Spec
	url     string
	version string
}

// Install resolves each spec against the merged repository index,
// downloads the selected archives, and extracts them into prefix,
// recording one InstalledPackage per spec in d (§4.5).
func (e *Engine) Install(ctx context.Context, d db.DB, specs []Spec, opt Options) error {
	if err := e.checkPrecondition(d, opt); err != nil {
		return err
	}

	idx, err := e.index(ctx, opt.Offline)
	if err != nil {
		return err
	}

	plan := make([]planEntry, 0, len(specs))
	for _, spec := range specs {
		if _, ok := idx[spec.Name]; !ok {
			return xerrors.Errorf("%s: %w", spec.Name, atxpkg.ErrNotAvailable)
		}
		if _, installed := d[spec.Name]; installed && !opt.Force && !opt.DownloadOnly {
			return xerrors.Errorf("%s: %w", spec.Name, atxpkg.ErrAlreadyInstalled)
		}

		var url, version string
		if spec.Version != "" {
			u, ok := idx.URL(spec.Name, spec.Version)
			if !ok {
				return xerrors.Errorf("%s-%s: %w", spec.Name, spec.Version, atxpkg.ErrNotAvailable)
			}
			url, version = u, spec.Version
		} else {
			u, v, ok := idx.Max(spec.Name)
			if !ok {
				return xerrors.Errorf("%s: %w", spec.Name, atxpkg.ErrNotAvailable)
			}
			url, version = u, v
		}
		plan = append(plan, planEntry{spec, url, version})
	}

	verb := "install"
	if opt.DownloadOnly {
		verb = "download"
	}
	for _, p := range plan {
		fmt.Printf("%s %s-%s\n", verb, p.spec.Name, p.version)
	}
	if !e.confirm(opt, "continue?", true) {
		return atxpkg.ErrUserAborted
	}

	urls := make([]string, len(plan))
	for i, p := range plan {
		urls[i] = p.url
	}
	localPaths, err := repo.FetchAll(ctx, e.client(opt.UnverifiedSSL), urls, e.CacheDir)
	if err != nil {
		return err
	}
	if opt.DownloadOnly {
		return nil
	}

	for i, p := range plan {
		pkg, err := e.installOne(p.spec.Name, p.version, localPaths[i], opt.Force)
		if err != nil {
			return xerrors.Errorf("installing %s: %w", p.spec.Name, err)
		}
		d[p.spec.Name] = *pkg
		fmt.Printf("%s-%s is now installed\n", p.spec.Name, p.version)
	}
	return nil
}

func (e *Engine) installOne(name, version, archivePath string, force bool) (*db.InstalledPackage, error) {
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
				return nil, xerrors.Errorf("%s: %w", target, atxpkg.ErrFileExists)
			}
		}
	}

	sums := make(map[string]*string, len(m.Dirs)+len(m.Files))
	if err := placeDirs(e.Prefix, stagingDir, m.Dirs, sums, prog); err != nil {
		return nil, err
	}

	for _, f := range m.Files {
		stagedPath := filepath.Join(stagingDir, filepath.FromSlash(f))
		sum, err := digest.MD5File(stagedPath)
		if err != nil {
			return nil, err
		}
		sums[f] = db.String(sum)

		target := filepath.Join(e.Prefix, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, err
		}
		if _, err := os.Stat(target); err == nil && m.Backup[f] {
			log.Printf("saving untracked %s as %s.atxpkg_save", target, target)
			if err := digest.MoveFile(target, target+".atxpkg_save"); err != nil {
				return nil, err
			}
		}
		if err := digest.MoveFile(stagedPath, target); err != nil {
			return nil, err
		}
		prog.Add(1)
	}

	now := time.Now().Unix()
	return &db.InstalledPackage{
		T:       &now,
		Version: version,
		MD5Sums: sums,
		Backup:  sortedKeys(m.Backup),
	}, nil
}
