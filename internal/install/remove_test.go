package install_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpodgorny/atxpkg"
	"github.com/rpodgorny/atxpkg/internal/db"
	"github.com/rpodgorny/atxpkg/internal/install"
)

func TestRemove(t *testing.T) {
	e, prefix, repoDir := newEngine(t)
	d := db.DB{}
	installTestPkg(t, e, repoDir, d)

	if err := e.Remove(d, []string{"test"}, install.Options{Yes: true}); err != nil {
		t.Fatal(err)
	}
	if _, ok := d["test"]; ok {
		t.Error("package still recorded in database after removal")
	}
	if _, err := os.Stat(filepath.Join(prefix, "etc", "test.conf")); !os.IsNotExist(err) {
		t.Errorf("etc/test.conf still present, err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(prefix, "etc")); !os.IsNotExist(err) {
		t.Errorf("now-empty etc dir still present, err=%v", err)
	}
}

func TestRemoveChangedBackupFilePreserved(t *testing.T) {
	e, prefix, repoDir := newEngine(t)
	d := db.DB{}
	installTestPkg(t, e, repoDir, d)

	if err := os.WriteFile(filepath.Join(prefix, "etc", "test.conf"), []byte("locally edited\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := e.Remove(d, []string{"test"}, install.Options{Yes: true}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(prefix, "etc", "test.conf.atxpkg_backup"))
	if err != nil {
		t.Fatalf("expected etc/test.conf.atxpkg_backup: %v", err)
	}
	if string(got) != "locally edited\n" {
		t.Errorf("backup content = %q, want preserved local edit", got)
	}
}

func TestRemoveNotInstalled(t *testing.T) {
	e, _, _ := newEngine(t)
	d := db.DB{}
	err := e.Remove(d, []string{"missing"}, install.Options{Yes: true})
	if err == nil {
		t.Fatal("expected error removing a package that is not installed")
	}
}

func TestRemoveIfInstalledPreconditionSatisfied(t *testing.T) {
	e, _, repoDir := newEngine(t)
	d := db.DB{}
	installTestPkg(t, e, repoDir, d)

	if err := e.Remove(d, []string{"test"}, install.Options{Yes: true, IfInstalled: "test-1.0-1, other"}); err == nil {
		t.Fatal("expected precondition failure: other is not installed")
	}
	if _, ok := d["test"]; !ok {
		t.Error("package removed from database despite failed precondition")
	}

	if err := e.Remove(d, []string{"test"}, install.Options{Yes: true, IfInstalled: "test-1.0-1"}); err != nil {
		t.Fatal(err)
	}
	if _, ok := d["test"]; ok {
		t.Error("package still recorded in database after removal")
	}
}

func TestRemoveIfInstalledPreconditionVersionMismatch(t *testing.T) {
	e, _, repoDir := newEngine(t)
	d := db.DB{}
	installTestPkg(t, e, repoDir, d)

	err := e.Remove(d, []string{"test"}, install.Options{Yes: true, IfInstalled: "test-9.9-9"})
	if err == nil || !errors.Is(err, atxpkg.ErrPreconditionFailed) {
		t.Fatalf("err = %v, want wrapping ErrPreconditionFailed", err)
	}
	if _, ok := d["test"]; !ok {
		t.Error("package removed from database despite failed precondition")
	}
}

func TestRemoveAborted(t *testing.T) {
	e, _, repoDir := newEngine(t)
	d := db.DB{}
	installTestPkg(t, e, repoDir, d)

	err := e.Remove(d, []string{"test"}, install.Options{})
	if err != atxpkg.ErrUserAborted {
		t.Fatalf("err = %v, want %v", err, atxpkg.ErrUserAborted)
	}
	if _, ok := d["test"]; !ok {
		t.Error("package removed from database despite aborted confirmation")
	}
}
