package main

import (
	"context"
	"fmt"

	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/install"
)

const listInstalledHelp = `atxpkg list_installed [-flags]

List installed packages and their versions.
`

func cmdListInstalled(_ context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("list_installed", listInstalledHelp)
	fset.Parse(args)
	debug = *dbg

	_, p, err := buildEngine(cf, false)
	if err != nil {
		return err
	}

	d, err := db.Load(p.dbPath)
	if err != nil {
		return err
	}
	for _, pkg := range install.ListInstalled(d) {
		fmt.Printf("%s-%s\n", pkg.Name, pkg.Version)
	}
	return nil
}
