package repo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/rpodgorny/atxpkg"
	"github.com/rpodgorny/atxpkg/internal/pool"
)

// Fetch ensures rawurl is present under cacheDir and returns its
// local path (§4.3). A local path is returned unchanged. A partial
// download left over from an earlier interrupted fetch (named
// "<target>_") is resumed via HTTP Range if the server advertises
// Accept-Ranges: bytes; otherwise the partial file is discarded and
// the archive is refetched from the start.
func Fetch(ctx context.Context, client *http.Client, rawurl, cacheDir string) (string, error) {
	if !(atxpkg.Repo{URI: rawurl}).IsHTTP() {
		return rawurl, nil
	}

	u, err := url.Parse(rawurl)
	if err != nil {
		return "", xerrors.Errorf("fetch: %w", err)
	}
	target := filepath.Join(cacheDir, filepath.Base(u.Path))

	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	partial := target + "_"
	var offset int64
	if fi, err := os.Stat(partial); err == nil {
		offset = fi.Size()
	}

	if offset > 0 {
		supported, err := supportsRange(ctx, client, rawurl)
		if err != nil {
			return "", xerrors.Errorf("fetch %s: %w", rawurl, err)
		}
		if !supported {
			offset = 0
		}
	}

	flags := os.O_WRONLY | os.O_CREATE
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(partial, flags, 0644)
	if err != nil {
		return "", xerrors.Errorf("fetch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		f.Close()
		return "", err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := client.Do(req)
	if err != nil {
		f.Close()
		return "", xerrors.Errorf("%w: %v", atxpkg.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		f.Close()
		return "", xerrors.Errorf("%w: %s: HTTP status %s", atxpkg.ErrDownloadFailed, rawurl, resp.Status)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", xerrors.Errorf("%w: %v", atxpkg.ErrDownloadFailed, err)
	}
	if err := f.Close(); err != nil {
		return "", xerrors.Errorf("fetch: %w", err)
	}

	if err := os.Rename(partial, target); err != nil {
		return "", xerrors.Errorf("fetch: %w", err)
	}
	return target, nil
}

func supportsRange(ctx context.Context, client *http.Client, rawurl string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawurl, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.Header.Get("Accept-Ranges") == "bytes", nil
}

// FetchAll downloads urls into cacheDir with bounded concurrency,
// returning local paths in request order. Used by install/update to
// download every needed archive before any staging begins.
func FetchAll(ctx context.Context, client *http.Client, urls []string, cacheDir string) ([]string, error) {
	return pool.Run(ctx, urls, func(ctx context.Context, u string) (string, error) {
		return Fetch(ctx, client, u, cacheDir)
	})
}
