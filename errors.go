package atxpkg

import "errors"

// Error kinds (§7). Operations wrap these sentinels with xerrors.Errorf
// so that context can be attached while still allowing callers to test
// the kind with errors.Is.
var (
	// ErrNotInstalled is returned when an operation references a
	// name/version that is absent from the installed-package database.
	ErrNotInstalled = errors.New("not installed")

	// ErrAlreadyInstalled is returned when an install target is already
	// present and neither force nor download-only was requested.
	ErrAlreadyInstalled = errors.New("already installed")

	// ErrNotAvailable is returned when no configured repository offers
	// the requested package name/version.
	ErrNotAvailable = errors.New("not available")

	// ErrFileExists is returned for an install-time on-disk conflict
	// not permitted because force was not requested.
	ErrFileExists = errors.New("file exists")

	// ErrForeignFile is returned during update when a path the staged
	// archive wants to place already exists on disk but is not part of
	// the old package's manifest.
	ErrForeignFile = errors.New("foreign file")

	// ErrDownloadFailed is returned for an HTTP non-success status,
	// network error, or failed resume.
	ErrDownloadFailed = errors.New("download failed")

	// ErrBadArchive is returned when a ZIP archive cannot be opened or
	// an entry cannot be extracted.
	ErrBadArchive = errors.New("bad archive")

	// ErrUserAborted is returned when a confirmation prompt is
	// declined.
	ErrUserAborted = errors.New("aborted by user")

	// ErrPreconditionFailed is returned when an --if-installed check
	// fails.
	ErrPreconditionFailed = errors.New("precondition failed")
)
