// Package repo gathers the merged package index across configured
// repositories and fetches archives into the local cache (§4.2,
// §4.3).
package repo

import (
	"context"
	"crypto/tls"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg"
	"github.com/rpodgorny/atxpkg/internal/pool"
)

// Index maps a package name to the URLs, across all repos in repo
// order, at which archives of that name are available.
type Index map[string][]string

// Max returns the URL among urls whose filename carries the highest
// version per atxpkg.CompareVersions, and that version string.
func (idx Index) Max(name string) (url, version string, ok bool) {
	for _, u := range idx[name] {
		_, v := atxpkg.SplitNameVersion(filepath.Base(u))
		if !ok || atxpkg.CompareVersions(v, version) > 0 {
			url, version, ok = u, v, true
		}
	}
	return url, version, ok
}

// URL returns the URL for name at the exact version, if present.
func (idx Index) URL(name, version string) (string, bool) {
	for _, u := range idx[name] {
		_, v := atxpkg.SplitNameVersion(filepath.Base(u))
		if v == version {
			return u, true
		}
	}
	return "", false
}

var hrefRE = regexp.MustCompile(`href\s*=\s*"([^"]+\.atxpkg\.zip)"`)

// List gathers the merged index across repos. repos[0] is
// conventionally the local cache directory; the rest may be local
// directories or HTTP(S) URLs. HTTP repos are skipped silently when
// offline is set. insecureSkipVerify disables TLS certificate
// verification for HTTP repos.
func List(ctx context.Context, repos []atxpkg.Repo, offline, insecureSkipVerify bool) (Index, error) {
	type listing struct {
		urls []string
	}

	results := pool.RunAll(ctx, repos, func(ctx context.Context, r atxpkg.Repo) (listing, error) {
		if r.IsHTTP() {
			if offline {
				return listing{}, nil
			}
			urls, err := listHTTP(ctx, r, insecureSkipVerify)
			return listing{urls: urls}, err
		}
		urls, err := listLocal(r)
		return listing{urls: urls}, err
	})

	idx := Index{}
	for _, res := range results {
		if res.Err != nil {
			log.Printf("repo %s: %v", res.Item.URI, res.Err)
			continue
		}
		for _, u := range res.Value.urls {
			name, version := atxpkg.SplitNameVersion(filepath.Base(u))
			if name == "" || version == "" {
				log.Printf("repo %s: skipping malformed entry %s", res.Item.URI, u)
				continue
			}
			idx[name] = append(idx[name], u)
		}
	}
	return idx, nil
}

func listLocal(r atxpkg.Repo) ([]string, error) {
	var urls []string
	err := filepath.WalkDir(r.URI, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".atxpkg.zip") {
			urls = append(urls, path)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("listing %s: %w", r.URI, err)
	}
	return urls, nil
}

func listHTTP(ctx context.Context, r atxpkg.Repo, insecureSkipVerify bool) ([]string, error) {
	client := httpClient(insecureSkipVerify)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URI, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := client.Do(req)
	if err != nil {
		return nil, xerrors.Errorf("%w: %v", atxpkg.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, xerrors.Errorf("%w: %s: HTTP status %s", atxpkg.ErrDownloadFailed, r.URI, resp.Status)
	}

	body := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(r.URI)
	if err != nil {
		return nil, err
	}
	// Resolve hrefs inside the repo URL, not next to it.
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	var urls []string
	for _, m := range hrefRE.FindAllStringSubmatch(string(b), -1) {
		ref, err := url.Parse(m[1])
		if err != nil {
			log.Printf("repo %s: skipping unparsable href %q", r.URI, m[1])
			continue
		}
		urls = append(urls, base.ResolveReference(ref).String())
	}
	return urls, nil
}

func httpClient(insecureSkipVerify bool) *http.Client {
	return NewClient(insecureSkipVerify)
}

// NewClient builds the HTTP client used for both index listing and
// archive fetches. insecureSkipVerify disables TLS certificate
// verification (off by default; a config escape hatch for
// self-signed mirrors).
func NewClient(insecureSkipVerify bool) *http.Client {
	return &http.Client{Transport: &http.Transport{
		MaxIdleConnsPerHost: pool.Size,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: insecureSkipVerify},
	}}
}
