package main

import (
	"context"
	"fmt"

	"github.com/rpodgorny/atxpkg/internal/db"
)

const showUntrackedHelp = `atxpkg show_untracked [-flags] [<path>...]

List files under the prefix not claimed by any installed package. With
no paths, scans every top-level directory any package touches.
`

func cmdShowUntracked(_ context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("show_untracked", showUntrackedHelp)
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
	untracked, err := e.Untracked(d, fset.Args())
	if err != nil {
		return err
	}
	for _, u := range untracked {
		fmt.Println(u)
	}
	return nil
}
