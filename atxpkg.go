// Package atxpkg implements the core of the atxpkg package manager: the
// install/update/remove transaction engine, the installed-package
// database, the content-tracked extraction protocol, and the repository
// index and download cache that feed it.
package atxpkg

// Repo is a package source: either a local directory or an HTTP(S) URL
// that serves an index of *.atxpkg.zip files.
type Repo struct {
	// URI is the filesystem path or HTTP(S) URL of the repository.
	URI string
}

// IsHTTP reports whether the repository is served over HTTP(S) rather
// than being a local directory.
func (r Repo) IsHTTP() bool {
	return isURL(r.URI)
}

func isURL(s string) bool {
	return len(s) >= 7 && (s[:7] == "http://" || (len(s) >= 8 && s[:8] == "https://"))
}
