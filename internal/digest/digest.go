// Package digest provides the file-integrity and crash-safe filesystem
// primitives the engine builds on: MD5 digesting, safe-delete via a
// tombstone rename, and atomic cross-filesystem move (§4.10).
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"

	"golang.org/x/xerrors"
)

// MD5File returns the hex-encoded MD5 digest of the file at path.
func MD5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", xerrors.Errorf("digest: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", xerrors.Errorf("digest: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SafeDelete removes path. If path does not exist, it succeeds. If it is
// not a regular file, it fails. Otherwise it renames path to a
// ".atxpkg_delete" tombstone (appending further "_delete" suffixes if an
// earlier tombstone is still present because its own removal failed)
// and then unlinks the tombstone. The two-step dance protects against
// other processes holding the original name open on platforms that
// refuse to delete a file while it is open.
func SafeDelete(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return xerrors.Errorf("safe-delete: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return xerrors.Errorf("safe-delete: not a file: %s", path)
	}

	tomb := path + ".atxpkg_delete"
	for {
		if _, err := os.Lstat(tomb); err != nil {
			break // name is free
		}
		if err := os.Remove(tomb); err == nil {
			break
		}
		tomb += "_delete"
	}

	if err := os.Rename(path, tomb); err != nil {
		return xerrors.Errorf("safe-delete: renaming %s to %s: %w", path, tomb, err)
	}
	if err := os.Remove(tomb); err != nil {
		// Another process may still hold the tombstone open; this is
		// not fatal, the file has already been unlinked from its
		// original name.
		return nil
	}
	return nil
}

// MoveFile moves src to dst: it first safe-deletes any existing dst,
// then renames src to dst. If the rename fails because src and dst are
// on different filesystems, it falls back to copy + safe-delete of src.
func MoveFile(src, dst string) error {
	if err := SafeDelete(dst); err != nil {
		return xerrors.Errorf("move: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		if !isCrossDevice(err) {
			return xerrors.Errorf("move: rename %s to %s: %w", src, dst, err)
		}
		if cerr := copyFile(src, dst); cerr != nil {
			return xerrors.Errorf("move: cross-device copy %s to %s: %w", src, dst, cerr)
		}
		if err := SafeDelete(src); err != nil {
			return xerrors.Errorf("move: cleaning up %s: %w", src, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
