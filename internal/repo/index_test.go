package repo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpodgorny/atxpkg"
)

func TestListLocal(t *testing.T) {
	dir := t.TempDir()
	for _, fn := range []string{
		"test-1.0-1.atxpkg.zip",
		"test-2.0-1.atxpkg.zip",
		"not-a-package.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, fn), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	idx, err := List(context.Background(), []atxpkg.Repo{{URI: dir}}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(idx["test"]); got != 2 {
		t.Fatalf("idx[test] has %d entries, want 2: %v", got, idx["test"])
	}
	url, version, ok := idx.Max("test")
	if !ok || version != "2.0-1" {
		t.Fatalf("Max(test) = (%q, %q, %v), want version 2.0-1", url, version, ok)
	}
}

func TestListHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="test-1.0-1.atxpkg.zip">test-1.0-1.atxpkg.zip</a>
			<a href="test-2.0-1.atxpkg.zip">test-2.0-1.atxpkg.zip</a>
			<a href="not-a-package.txt">ignored</a>
		</body></html>`))
	}))
	defer srv.Close()

	idx, err := List(context.Background(), []atxpkg.Repo{{URI: srv.URL}}, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(idx["test"]); got != 2 {
		t.Fatalf("idx[test] has %d entries, want 2: %v", got, idx["test"])
	}
}

func TestListHTTPOffline(t *testing.T) {
	idx, err := List(context.Background(), []atxpkg.Repo{{URI: "http://example.invalid/repo"}}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 0 {
		t.Fatalf("idx = %v, want empty when offline", idx)
	}
}
