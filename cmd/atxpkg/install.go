package main

import (
	"context"

	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/install"
)

const installHelp = `atxpkg install [-flags] <spec>...

Install one or more packages by name (optionally name-version) from
the configured repositories.
`

func cmdInstall(ctx context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("install", installHelp)
	var (
		force         = fset.Bool("f", false, "overwrite files already on disk")
		downloadOnly  = fset.Bool("w", false, "fetch archives into the cache without installing")
		yes           = fset.Bool("y", false, "assume yes to all prompts")
		no            = fset.Bool("n", false, "assume no to all prompts")
		offline       = fset.Bool("offline", false, "use only the local repository cache")
		unverifiedSSL = fset.Bool("unverified-ssl", false, "skip TLS certificate verification")
		ifInstalled   = fset.String("if-installed", "", "require this package already be installed")
	)
	fset.BoolVar(force, "force", false, "alias of -f")
	fset.BoolVar(downloadOnly, "downloadonly", false, "alias of -w")
	fset.BoolVar(yes, "yes", false, "alias of -y")
	fset.BoolVar(no, "no", false, "alias of -n")
	fset.Parse(args)
	debug = *dbg

	e, p, err := buildEngine(cf, *unverifiedSSL)
	if err != nil {
		return err
	}

	specs := make([]install.Spec, 0, fset.NArg())
	for _, a := range fset.Args() {
		specs = append(specs, install.ParseSpec(a))
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
		return e.Install(ctx, d, specs, opt)
	})
}
