package main

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg/internal/db"
)

const checkHelp = `atxpkg check [-flags] [<name>...]

Verify installed packages against the filesystem. With no arguments,
every installed package is checked.
`

func cmdCheck(_ context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("check", checkHelp)
	fset.Parse(args)
	debug = *dbg

	e, p, err := buildEngine(cf, false)
	if err != nil {
		return err
	}

	d, err := db.Load(p.dbPath)
	if err != nil {
		return err
	}
	names := fset.Args()
	if len(names) == 0 {
		names = sortedDBKeys(d)
	}
	problems, err := e.Check(d, names)
	if err != nil {
		return err
	}
	if problems > 0 {
		return xerrors.Errorf("check found %d problem(s)", problems)
	}
	return nil
}
