package dictionary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDictionary_LocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jmdict-test.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// An existing file must be used as is; no network access happens.
	if err := EnsureDictionary(context.Background(), path, nil); err != nil {
		t.Fatalf("EnsureDictionary failed with local file: %v", err)
	}
}

func tgz(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		t.Fatalf("tar write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestDownloaderEnsure(t *testing.T) {
	archive := tgz(t, "jmdict-eng-common-3.6.1.json", sampleDict)

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/release", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "user agent required", http.StatusForbidden)
			return
		}
		fmt.Fprintf(w, `{"assets":[{"name":"jmdict-eng-3.6.1.json.tgz","browser_download_url":"%[1]s/wrong"},{"name":"jmdict-eng-common-3.6.1.json.tgz","browser_download_url":"%[1]s/asset"}]}`, srv.URL)
	})
	mux.HandleFunc("/asset", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	d := NewDownloader(nil)
	d.Client = srv.Client()
	d.ReleaseURL = srv.URL + "/release"

	path := filepath.Join(t.TempDir(), "dict", DefaultDictFileName)
	if err := d.Ensure(context.Background(), path); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		t.Fatalf("load downloaded dict: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.part"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}
}

func TestDownloaderNoAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"assets":[{"name":"kanjidic.json.tgz"}]}`))
	}))
	defer srv.Close()

	d := NewDownloader(nil)
	d.Client = srv.Client()
	d.ReleaseURL = srv.URL
	path := filepath.Join(t.TempDir(), "d.json")
	if err := d.Ensure(context.Background(), path); err == nil {
		t.Fatalf("expected error when no asset matches")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no file should be created, stat err = %v", err)
	}
}
