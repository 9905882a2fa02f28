// Package install implements the install/update/remove/check/
// untracked-scan transaction engine: the part of the system that
// actually mutates a prefix and the installed-package database that
// describes it (§4.5-§4.9).
package install

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg"
	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/extract"
	"github.com/rpodgorny/atxpkg/internal/repo"
)

// Progress reports step-wise advancement of a long-running
// operation. Add is called once per completed unit of work; Finish
// is called exactly once when the operation ends.
type Progress interface {
	Add(n int)
	Finish()
}

type noopProgress struct{}

func (noopProgress) Add(int) {}
func (noopProgress) Finish() {}

// Engine carries the ambient resources and capabilities the
// operations need: filesystem roots, the HTTP client used for
// fetches, and the Ask/NewProgress hooks the CLI realizes as a
// terminal prompt and a progress bar (or as silent defaults in
// non-interactive contexts).
type Engine struct {
	// Prefix is the root files are installed under.
	Prefix string
	// CacheDir holds fetched archives.
	CacheDir string
	// TmpDir is the per-transaction staging root.
	TmpDir string
	// Repos is the ordered list of repositories, repos[0]
	// conventionally the local cache.
	Repos []atxpkg.Repo

	Client *http.Client

	// Ask prompts the user with prompt, returning their answer;
	// defaultYes seeds the suggested answer when stdin is not a
	// terminal. A nil Ask always answers defaultYes.
	Ask func(prompt string, defaultYes bool) bool

	// NewProgress creates a Progress for an operation labelled prefix
	// with total steps. A nil NewProgress yields a silent Progress.
	NewProgress func(prefix string, total int) Progress
}

func (e *Engine) ask(prompt string, defaultYes bool) bool {
	if e.Ask == nil {
		return defaultYes
	}
	return e.Ask(prompt, defaultYes)
}

func (e *Engine) progress(prefix string, total int) Progress {
	if e.NewProgress == nil {
		return noopProgress{}
	}
	return e.NewProgress(prefix, total)
}

// Options carries the flags shared by install/update/remove that the
// spec models as per-invocation switches rather than engine state.
type Options struct {
	Force         bool
	Yes           bool
	No            bool
	DownloadOnly  bool
	Offline       bool
	UnverifiedSSL bool
	// IfInstalled, when non-empty, is a comma-separated list of
	// name[-version] entries that must all already be present in the
	// database (at that exact version, where one is given), or the
	// operation fails before any prompt or mutation.
	IfInstalled string
}

// confirm resolves yes/no/prompt precedence: no wins outright, yes
// skips the prompt, otherwise Ask is consulted.
func (e *Engine) confirm(opt Options, prompt string, defaultYes bool) bool {
	if opt.No {
		return false
	}
	if opt.Yes {
		return true
	}
	return e.ask(prompt, defaultYes)
}

// checkPrecondition verifies every comma-separated name[-version] in
// opt.IfInstalled is currently installed, at the exact version given
// if one was given, before any prompt or mutation runs.
func (e *Engine) checkPrecondition(d db.DB, opt Options) error {
	if opt.IfInstalled == "" {
		return nil
	}
	for _, entry := range strings.Split(opt.IfInstalled, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		spec := ParseSpec(entry)
		pkg, ok := d[spec.Name]
		if !ok || (spec.Version != "" && pkg.Version != spec.Version) {
			return xerrors.Errorf("%s: %w", entry, atxpkg.ErrPreconditionFailed)
		}
	}
	return nil
}

// index lists e.Repos, verifying TLS certificates for HTTP repos
// unless e.Client is configured to skip verification.
func (e *Engine) index(ctx context.Context, offline bool) (repo.Index, error) {
	insecure := false
	if e.Client != nil {
		if t, ok := e.Client.Transport.(*http.Transport); ok && t.TLSClientConfig != nil {
			insecure = t.TLSClientConfig.InsecureSkipVerify
		}
	}
	return repo.List(ctx, e.Repos, offline, insecure)
}

func (e *Engine) client(insecureSkipVerify bool) *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return repo.NewClient(insecureSkipVerify)
}

// stage extracts archivePath into a fresh directory under e.TmpDir
// and returns its path and manifest. Callers are responsible for
// removing the staging directory once done with it.
func (e *Engine) stage(archivePath string) (string, *extract.Manifest, error) {
	stagingDir, err := os.MkdirTemp(e.TmpDir, "stage-")
	if err != nil {
		return "", nil, xerrors.Errorf("staging: %w", err)
	}
	m, err := extract.ToStaging(archivePath, stagingDir)
	if err != nil {
		os.RemoveAll(stagingDir)
		return "", nil, err
	}
	return stagingDir, m, nil
}

// placeDirs creates each staged directory under prefix (ascending
// path-length order, so parents exist before children) and copies
// its permissions and mtime, recording a nil digest for each.
func placeDirs(prefix, stagingDir string, dirs []string, sums map[string]*string, prog Progress) error {
	sorted := append([]string(nil), dirs...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) < len(sorted[j]) })

	for _, d := range sorted {
		target := filepath.Join(prefix, filepath.FromSlash(d))
		if _, err := os.Stat(target); os.IsNotExist(err) {
			if err := os.Mkdir(target, 0o755); err != nil {
				return xerrors.Errorf("creating %s: %w", target, err)
			}
		}
		fi, err := os.Stat(filepath.Join(stagingDir, filepath.FromSlash(d)))
		if err != nil {
			return err
		}
		if err := os.Chmod(target, fi.Mode().Perm()); err != nil {
			return err
		}
		if err := os.Chtimes(target, fi.ModTime(), fi.ModTime()); err != nil {
			return err
		}
		sums[d] = nil
		prog.Add(1)
	}
	return nil
}

// removeEmptyDirs removes each of dirs, descending path-length order,
// when it exists, is empty, and is not prefix itself. Non-empty
// directories are left in place with a warning.
func removeEmptyDirs(prefix string, dirs []string, prog Progress) {
	sorted := append([]string(nil), dirs...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, d := range sorted {
		target := filepath.Join(prefix, filepath.FromSlash(d))
		if target == filepath.Clean(prefix) {
			prog.Add(1)
			continue
		}
		if _, err := os.Stat(target); os.IsNotExist(err) {
			log.Printf("%s: already missing, skipping", target)
			prog.Add(1)
			continue
		}
		empty, err := isEmptyDir(target)
		if err != nil {
			log.Printf("%s: %v", target, err)
			prog.Add(1)
			continue
		}
		if empty {
			if err := os.Remove(target); err != nil {
				log.Printf("removing %s: %v", target, err)
			}
		} else {
			log.Printf("%s: not empty, leaving in place", target)
		}
		prog.Add(1)
	}
}

func isEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if err == nil {
		return false, nil
	}
	return true, nil
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
