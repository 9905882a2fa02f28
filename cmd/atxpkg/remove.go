package main

import (
	"context"

	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/install"
)

const removeHelp = `atxpkg remove [-flags] <name>...

Remove one or more installed packages.
`

func cmdRemove(ctx context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("remove", removeHelp)
	var (
		yes         = fset.Bool("y", false, "assume yes to all prompts")
		no          = fset.Bool("n", false, "assume no to all prompts")
		ifInstalled = fset.String("if-installed", "", "require this package already be installed")
	)
	fset.Parse(args)
	debug = *dbg

	e, p, err := buildEngine(cf, false)
	if err != nil {
		return err
	}

	opt := install.Options{Yes: *yes, No: *no, IfInstalled: *ifInstalled}
	return withDB(p.dbPath, func(d db.DB) error {
		return e.Remove(d, fset.Args(), opt)
	})
}
