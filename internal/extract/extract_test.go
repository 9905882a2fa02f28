package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTestArchive(t *testing.T, entries map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	fn := filepath.Join(dir, "test-1.0-1.atxpkg.zip")
	f, err := os.Create(fn)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestToStaging(t *testing.T) {
	archive := writeTestArchive(t, map[string]string{
		"etc/":               "",
		"etc/test.conf":      "default config\n",
		"bin/test":           "#!/bin/sh\necho hi\n",
		".atxpkg_backup":     "# comment\n\netc/test.conf\n",
		".atxpkg_delete_old": "should never be written",
	})

	staging := t.TempDir()
	m, err := ToStaging(archive, staging)
	if err != nil {
		t.Fatal(err)
	}

	sort.Strings(m.Files)
	wantFiles := []string{"bin/test", "etc/test.conf"}
	if diff := cmp.Diff(wantFiles, m.Files); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}

	wantDirs := []string{"etc"}
	if diff := cmp.Diff(wantDirs, m.Dirs); diff != "" {
		t.Errorf("Dirs mismatch (-want +got):\n%s", diff)
	}

	if !m.Backup["etc/test.conf"] {
		t.Errorf("expected etc/test.conf to be backup-protected")
	}
	if len(m.Backup) != 1 {
		t.Errorf("Backup = %v, want exactly one entry", m.Backup)
	}

	for _, rel := range []string{"etc/test.conf", "bin/test"} {
		if _, err := os.Stat(filepath.Join(staging, filepath.FromSlash(rel))); err != nil {
			t.Errorf("staged file %s missing: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(staging, ".atxpkg_delete_old")); !os.IsNotExist(err) {
		t.Errorf(".atxpkg_delete_old should not have been staged, err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(staging, ".atxpkg_backup")); !os.IsNotExist(err) {
		t.Errorf(".atxpkg_backup should not have been staged, err=%v", err)
	}
}

func TestToStagingNoBackupFile(t *testing.T) {
	archive := writeTestArchive(t, map[string]string{
		"README": "hello\n",
	})
	staging := t.TempDir()
	m, err := ToStaging(archive, staging)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Backup) != 0 {
		t.Errorf("Backup = %v, want empty", m.Backup)
	}
	if diff := cmp.Diff([]string{"README"}, m.Files); diff != "" {
		t.Errorf("Files mismatch (-want +got):\n%s", diff)
	}
}

func TestToStagingBadArchive(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "bad.atxpkg.zip")
	if err := os.WriteFile(fn, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ToStaging(fn, t.TempDir()); err == nil {
		t.Fatal("expected error for malformed archive")
	}
}
