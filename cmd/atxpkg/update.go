package main

import (
	"context"

	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/install"
)

const updateHelp = `atxpkg update [-flags] [<spec>|<old-spec>..<new-spec>]...

Update installed packages. With no arguments, every installed package
is updated in place to the newest version its repositories offer.
`

func cmdUpdate(ctx context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("update", updateHelp)
	var (
		force         = fset.Bool("f", false, "update even when already at the requested version")
		downloadOnly  = fset.Bool("w", false, "fetch archives into the cache without updating")
		yes           = fset.Bool("y", false, "assume yes to all prompts")
		no            = fset.Bool("n", false, "assume no to all prompts")
		offline       = fset.Bool("offline", false, "use only the local repository cache")
		unverifiedSSL = fset.Bool("unverified-ssl", false, "skip TLS certificate verification")
		ifInstalled   = fset.String("if-installed", "", "require this package already be installed")
	)
	fset.Parse(args)
	debug = *dbg

	e, p, err := buildEngine(cf, *unverifiedSSL)
	if err != nil {
		return err
	}

	opt := install.Options{
		Force:         *force,
		DownloadOnly:  *downloadOnly,
		Yes:           *yes,
		No:            *no,
		Offline:       *offline,
		UnverifiedSSL: *unverifiedSSL,
		IfInstalled:   *ifInstalled,
	}

	return withDB(p.dbPath, func(d db.DB) error {
		specs := make([]install.UpdateSpec, 0, fset.NArg())
		for _, a := range fset.Args() {
			specs = append(specs, install.ParseUpdateSpec(a))
		}
		bulk := len(specs) == 0
		if bulk {
			specs = install.AllInstalledUpdateSpecs(d)
		}
		_, err := e.Update(ctx, d, specs, opt, bulk)
		return err
	})
}
