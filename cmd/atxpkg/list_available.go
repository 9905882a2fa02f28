package main

import (
	"context"
	"fmt"
)

const listAvailableHelp = `atxpkg list_available [-flags] [<name>...]

List the newest version of each package the configured repositories
offer, optionally restricted to the given names.
`

func cmdListAvailable(ctx context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("list_available", listAvailableHelp)
	offline := fset.Bool("offline", false, "use only the local repository cache")
	fset.Parse(args)
	debug = *dbg

	e, _, err := buildEngine(cf, false)
	if err != nil {
		return err
	}

	avail, err := e.ListAvailable(ctx, fset.Args(), *offline)
	if err != nil {
		return err
	}
	for _, a := range avail {
		fmt.Printf("%s-%s\n", a.Name, a.Version)
	}
	return nil
}
