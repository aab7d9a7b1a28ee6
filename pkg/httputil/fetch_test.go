package httputil

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/cache"
	"github.com/matzehuels/facepile/pkg/errors"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestDataURIPassThrough(t *testing.T) {
	f := NewFetcher()
	src := "data:image/png;base64,AAAA"
	got, err := f.DataURI(context.Background(), src)
	if err != nil || got != src {
		t.Errorf("DataURI(data:) = %q, %v", got, err)
	}
}

func TestDataURIRemote(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(WithCache(fc, time.Hour))

	for i := 0; i < 2; i++ {
		got, err := f.DataURI(context.Background(), srv.URL+"/ann.png")
		if err != nil {
			t.Fatalf("DataURI: %v", err)
		}
		want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader)
		if got != want {
			t.Errorf("DataURI = %q, want %q", got, want)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (second call cached)", hits.Load())
	}
}

func TestDataURIRemoteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>hi</body></html>"))
		case "/big":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(append(pngHeader, make([]byte, 64)...))
		}
	}))
	defer srv.Close()

	f := NewFetcher(WithMaxBytes(32))
	tests := []struct {
		path string
		code errors.Code
	}{
		{"/missing.png", errors.ErrCodeNotFound},
		{"/page", errors.ErrCodeUnsupported},
		{"/big", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := f.DataURI(context.Background(), srv.URL+tt.path)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestDataURILocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bo.PNG")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	f := NewFetcher()
	got, err := f.DataURI(context.Background(), path)
	if err != nil {
		t.Fatalf("DataURI: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("DataURI = %q", got)
	}

	_, err = f.DataURI(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file err = %v, want NOT_FOUND", err)
	}
}

func TestInline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ann.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	in := []avatar.Collaborator{
		{Name: "Ann", ImageSource: srv.URL + "/ann.png"},
		{Name: "Bo", ImageSource: srv.URL + "/bo.png"},
		{Name: "Cy"},
	}
	out := NewFetcher(WithLogger(quietLogger())).Inline(context.Background(), in)

	if !strings.HasPrefix(out[0].ImageSource, "data:image/png") {
		t.Errorf("Ann image = %q, want data URI", out[0].ImageSource)
	}
	if out[1].ImageSource != "" {
		t.Errorf("Bo image = %q, want fallback to initial", out[1].ImageSource)
	}
	if out[2].ImageSource != "" || out[2].Name != "Cy" {
		t.Errorf("Cy = %+v", out[2])
	}
	if in[0].ImageSource != srv.URL+"/ann.png" {
		t.Error("Inline must not modify its input")
	}
}

func TestPublicClientRefusesLoopback(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	f := NewFetcher(WithClient(PublicClient(time.Second)), WithLogger(quietLogger()))
	_, err := f.DataURI(context.Background(), srv.URL+"/ann.png")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("DataURI(loopback) = %v, want INVALID_INPUT", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hits = %d, want 0", hits.Load())
	}

	out := f.Inline(context.Background(), []avatar.Collaborator{{Name: "Ann", ImageSource: srv.URL + "/ann.png"}})
	if out[0].ImageSource != "" {
		t.Errorf("Inline kept blocked image %q", out[0].ImageSource)
	}
}

func TestIsBlockedAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"169.254.169.254", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"::ffff:127.0.0.1", true},
		{"224.0.0.1", true},
		{"93.184.216.34", false},
		{"2606:4700::1111", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := IsBlockedAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
				t.Errorf("IsBlockedAddr(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}
