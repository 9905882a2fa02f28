package main

import (
	"sort"

	"github.com/rpodgorny/atxpkg/internal/db"
)

func sortedDBKeys(d db.DB) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
