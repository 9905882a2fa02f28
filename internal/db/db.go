// Package db persists the installed-package database: a name-keyed
// map of InstalledPackage records written as pretty-printed JSON
// (§3).
package db

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/google/renameio"
	"golang.org/x/xerrors"
)

// InstalledPackage is the canonical per-package record.
type InstalledPackage struct {
	// T is the epoch-seconds timestamp of the install/update event, or
	// nil if unset (never recorded for this entry).
	T *int64 `json:"t"`

	// Version is the version string extracted from the package
	// filename at install/update time.
	Version string `json:"version"`

	// MD5Sums maps a manifest entry (relative path, "/"-separated, no
	// leading slash) to its hex MD5 digest for files, or nil for
	// directory entries.
	MD5Sums map[string]*string `json:"md5sums"`

	// Backup lists the relative paths treated as user-editable
	// configuration that must survive upgrades.
	Backup []string `json:"backup"`
}

// DB is the installed-package database: name to record.
type DB map[string]InstalledPackage

// Load reads the database at path. A missing file is treated as an
// empty database rather than an error, matching first-run behavior.
func Load(path string) (DB, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DB{}, nil
		}
		return nil, xerrors.Errorf("loading installed package database: %w", err)
	}
	var d DB
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, xerrors.Errorf("parsing installed package database: %w", err)
	}
	if d == nil {
		d = DB{}
	}
	return d, nil
}

// Save writes d to path as pretty-printed JSON (two-space indent,
// matching the reference serializer), replacing the file atomically.
func Save(path string, d DB) error {
	if d == nil {
		d = DB{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return xerrors.Errorf("encoding installed package database: %w", err)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return xerrors.Errorf("saving installed package database: %w", err)
	}
	return nil
}

// String returns s as a digest pointer for an InstalledPackage's
// MD5Sums map.
func String(s string) *string { return &s }
