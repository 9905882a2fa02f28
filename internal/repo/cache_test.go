package repo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchLocalPathUnchanged(t *testing.T) {
	got, err := Fetch(context.Background(), NewClient(false), "/some/local/path.atxpkg.zip", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got != "/some/local/path.atxpkg.zip" {
		t.Fatalf("Fetch() = %q, want unchanged local path", got)
	}
}

func TestFetchCacheHit(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "test-1.0-1.atxpkg.zip")
	if err := os.WriteFile(target, []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("should not be fetched"))
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), NewClient(false), srv.URL+"/test-1.0-1.atxpkg.zip", dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Fatalf("Fetch() = %q, want %q", got, target)
	}
	if calls != 0 {
		t.Fatalf("server was hit %d times, want 0 (cache hit)", calls)
	}
}

func TestFetchFullDownload(t *testing.T) {
	const body = "archive contents"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dir := t.TempDir()
	got, err := Fetch(context.Background(), NewClient(false), srv.URL+"/test-1.0-1.atxpkg.zip", dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != body {
		t.Fatalf("fetched content = %q, want %q", b, body)
	}
	if _, err := os.Stat(got + "_"); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind: err=%v", err)
	}
}

func TestFetchResumesPartial(t *testing.T) {
	const full = "0123456789"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Accept-Ranges", "bytes")
			return
		}
		if rng := r.Header.Get("Range"); rng == "bytes=5-" {
			w.WriteHeader(http.StatusPartialContent)
			w.Write([]byte(full[5:]))
			return
		}
		w.Write([]byte(full))
	}))
	defer srv.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "test-1.0-1.atxpkg.zip")
	if err := os.WriteFile(target+"_", []byte(full[:5]), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Fetch(context.Background(), NewClient(false), srv.URL+"/test-1.0-1.atxpkg.zip", dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != full {
		t.Fatalf("resumed content = %q, want %q", b, full)
	}
}

func TestFetchDiscardsPartialWithoutRangeSupport(t *testing.T) {
	const full = "freshcopy"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return // no Accept-Ranges
		}
		w.Write([]byte(full))
	}))
	defer srv.Close()

	dir := t.TempDir()
	target := filepath.Join(dir, "test-1.0-1.atxpkg.zip")
	if err := os.WriteFile(target+"_", []byte("stale partial data"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Fetch(context.Background(), NewClient(false), srv.URL+"/test-1.0-1.atxpkg.zip", dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != full {
		t.Fatalf("content = %q, want %q (fresh refetch)", b, full)
	}
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	urls := []string{
		srv.URL + "/a-1.0-1.atxpkg.zip",
		srv.URL + "/b-1.0-1.atxpkg.zip",
	}
	got, err := FetchAll(context.Background(), NewClient(false), urls, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
}
