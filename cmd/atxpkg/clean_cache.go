package main

import "context"

const cleanCacheHelp = `atxpkg clean_cache [-flags]

Empty the downloaded-archive cache.
`

func cmdCleanCache(_ context.Context, args []string) error {
	fset, cf, dbg := newFlagSet("clean_cache", cleanCacheHelp)
	fset.Parse(args)
	debug = *dbg

	e, _, err := buildEngine(cf, false)
	if err != nil {
		return err
	}
	return e.CleanCache()
}
