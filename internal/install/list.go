package install

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rpodgorny/atxpkg/internal/db"
)

// Available describes one version offered by the merged repository
// index for a package name.
type Available struct {
	Name    string
	Version string
	URL     string
}

// ListAvailable returns the highest version of each name offered by
// the repositories, restricted to names if non-empty, sorted by name.
func (e *Engine) ListAvailable(ctx context.Context, names []string, offline bool) ([]Available, error) {
	idx, err := e.index(ctx, offline)
	if err != nil {
		return nil, err
	}

	wanted := names
	if len(wanted) == 0 {
		wanted = make([]string, 0, len(idx))
		for name := range idx {
			wanted = append(wanted, name)
		}
	}
	sort.Strings(wanted)

	out := make([]Available, 0, len(wanted))
	for _, name := range wanted {
		url, version, ok := idx.Max(name)
		if !ok {
			continue
		}
		out = append(out, Available{Name: name, Version: version, URL: url})
	}
	return out, nil
}

// ListInstalled returns every installed package's name and version,
// sorted by name.
func ListInstalled(d db.DB) []Available {
	names := sortedKeys(d)
	out := make([]Available, 0, len(names))
	for _, name := range names {
		out = append(out, Available{Name: name, Version: d[name].Version})
	}
	return out
}

// AllInstalledUpdateSpecs builds the bulk-update spec list used when
// `update` is invoked with no explicit specs: every installed package,
// updated in place to whatever version the repositories currently
// offer.
func AllInstalledUpdateSpecs(d db.DB) []UpdateSpec {
	names := sortedKeys(d)
	specs := make([]UpdateSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, UpdateSpec{OldName: name, OldVersion: d[name].Version, NewName: name})
	}
	return specs
}

// CleanCache empties the engine's cache directory. The cache is keyed
// by URL rather than content, so there is nothing to selectively
// prune: cleaning it just removes everything fetched so far.
func (e *Engine) CleanCache() error {
	entries, err := os.ReadDir(e.CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, ent := range entries {
		if err := os.RemoveAll(filepath.Join(e.CacheDir, ent.Name())); err != nil {
			return err
		}
	}
	return nil
}
