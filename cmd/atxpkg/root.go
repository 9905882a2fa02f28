package main

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rpodgorny/atxpkg"
)

// defaultRoot returns the platform default root directory (§6):
// /tmp/atxpkg on Unix, c:/atxpkg on Windows. ATXPKG_ROOT overrides it.
func defaultRoot() string {
	if r := os.Getenv("ATXPKG_ROOT"); r != "" {
		return r
	}
	if runtime.GOOS == "windows" {
		return `c:\atxpkg`
	}
	return "/tmp/atxpkg"
}

// defaultPrefix returns the platform default install prefix: / on
// Unix, c:/ on Windows.
func defaultPrefix() string {
	if runtime.GOOS == "windows" {
		return `c:\`
	}
	return "/"
}

type paths struct {
	root      string
	prefix    string
	cacheDir  string
	tmpDir    string
	dbPath    string
	reposPath string
	logPath   string
}

func resolvePaths(root, prefix string) paths {
	return paths{
		root:      root,
		prefix:    prefix,
		cacheDir:  filepath.Join(root, "cache"),
		tmpDir:    filepath.Join(root, "tmp"),
		dbPath:    filepath.Join(root, "installed.json"),
		reposPath: filepath.Join(root, "repos.txt"),
		logPath:   filepath.Join(root, "atxpkg.log"),
	}
}

func (p paths) ensureDirs() error {
	for _, d := range []string{p.root, p.cacheDir, p.tmpDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// readRepos parses repos.txt: one URI per line, blank lines and lines
// starting with '#' ignored. A missing file yields no repos.
func readRepos(path string) ([]atxpkg.Repo, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var repos []atxpkg.Repo
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		repos = append(repos, atxpkg.Repo{URI: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return repos, nil
}
