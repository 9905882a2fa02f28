package main

import (
	"flag"

	"github.com/rpodgorny/atxpkg"
	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/install"
	"github.com/rpodgorny/atxpkg/internal/repo"
)

// commonFlags are accepted by every verb (§6): -prefix overrides the
// install root, -debug enables %+v error formatting for this process.
type commonFlags struct {
	root   *string
	prefix *string
}

func addCommonFlags(fset *flag.FlagSet) *commonFlags {
	return &commonFlags{
		root:   fset.String("root", defaultRoot(), "atxpkg state directory (cache, db, logs)"),
		prefix: fset.String("prefix", defaultPrefix(), "filesystem root to install into"),
	}
}

func newFlagSet(name, helpText string) (*flag.FlagSet, *commonFlags, *bool) {
	fset := flag.NewFlagSet(name, flag.ExitOnError)
	cf := addCommonFlags(fset)
	dbg := fset.Bool("debug", false, "format error messages with additional detail")
	fset.Usage = usage(fset, helpText)
	return fset, cf, dbg
}

// buildEngine resolves paths, ensures the state directories exist,
// starts logging, reads repos.txt (placing the cache directory first
// in the repo list), and constructs an Engine wired to the interactive
// Ask/Progress realizations in interact.go.
func buildEngine(cf *commonFlags, insecureSkipVerify bool) (*install.Engine, paths, error) {
	p := resolvePaths(*cf.root, *cf.prefix)
	if err := p.ensureDirs(); err != nil {
		return nil, p, err
	}
	if _, err := setupLog(p.logPath); err != nil {
		return nil, p, err
	}
	repos, err := readRepos(p.reposPath)
	if err != nil {
		return nil, p, err
	}
	repos = append([]atxpkg.Repo{{URI: p.cacheDir}}, repos...)
	e := &install.Engine{
		Prefix:      p.prefix,
		CacheDir:    p.cacheDir,
		TmpDir:      p.tmpDir,
		Repos:       repos,
		Client:      repo.NewClient(insecureSkipVerify),
		Ask:         ask,
		NewProgress: newProgress,
	}
	return e, p, nil
}

// withDB loads the database, runs fn against it, and always writes it
// back afterward regardless of whether fn succeeded, so that partial
// progress from a failed transaction is still durable (§5).
func withDB(dbPath string, fn func(db.DB) error) error {
	d, err := db.Load(dbPath)
	if err != nil {
		return err
	}
	opErr := fn(d)
	if saveErr := db.Save(dbPath, d); saveErr != nil {
		if opErr != nil {
			return opErr
		}
		return saveErr
	}
	return opErr
}
