package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/cache"
	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/size"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && errors.GetCode(err) != errors.ErrCodeInvalidFormat {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{
		Collaborators: []avatar.Collaborator{{Name: "Ann"}},
		Formats:       []string{"json", "svg", "json"},
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Size != size.MD {
		t.Errorf("Size = %s, want md", opts.Size)
	}
	if got := strings.Join(opts.Formats, ","); got != "json,svg" {
		t.Errorf("Formats = %s, want json,svg", got)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	ann := []avatar.Collaborator{{Name: "Ann"}}
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no collaborators", Options{}, errors.ErrCodeInvalidCount},
		{"bad size", Options{Collaborators: ann, Size: "xxl"}, errors.ErrCodeInvalidSize},
		{"bad format", Options{Collaborators: ann, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative scale", Options{Collaborators: ann, Scale: -1}, errors.ErrCodeInvalidInput},
		{"huge scale", Options{Collaborators: ann, Scale: MaxScale + 1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3, Title: "Team"}
	if got := opts.ArtifactKeyOpts(FormatSVG); got.Scale != 0 || !got.Wash || got.Title != "Team" {
		t.Errorf("svg key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatPNG); got.Scale != 3 {
		t.Errorf("png key opts scale = %v, want 3", got.Scale)
	}
	opts.FontFamily = "Georgia"
	if got := opts.ArtifactKeyOpts(FormatSVG).Font; got != "Georgia" {
		t.Errorf("svg key opts font = %q, want Georgia", got)
	}
	opts.NoWash = true
	if opts.ArtifactKeyOpts(FormatSVG).Wash {
		t.Error("NoWash should clear Wash")
	}
}

// memCache is an in-memory cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets atomic.Int32
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.sets.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Collaborators: []avatar.Collaborator{{Name: "Ann"}, {Name: "Bo", ImageSource: "https://example.com/bo.png"}},
		Formats:       []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Cells != 2 || res.Stats.Collaborators != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.Hash == "" {
		t.Error("Hash should be set")
	}
	svg := res.Artifacts[FormatSVG]
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", svg)
	}
	if !bytes.Contains(svg, []byte("https://example.com/bo.png")) {
		t.Error("svg should reference Bo's image")
	}

	var doc map[string]any
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc["size"] != "md" {
		t.Errorf("json size = %v, want md", doc["size"])
	}
	if len(res.CacheInfo.Misses) != 2 || len(res.CacheInfo.Hits) != 0 {
		t.Errorf("CacheInfo = %+v", res.CacheInfo)
	}
}

func TestExecuteTruncates(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Collaborators: []avatar.Collaborator{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Cells != avatar.MaxTiles {
		t.Errorf("Cells = %d, want %d", res.Stats.Cells, avatar.MaxTiles)
	}
	if res.Stats.Collaborators != 4 {
		t.Errorf("Collaborators = %d, want 4", res.Stats.Collaborators)
	}
}

func TestExecuteCaches(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)

	var renders atomic.Int32
	r.Renderers[FormatSVG] = func(c *avatar.Composite, _ Options) ([]byte, error) {
		renders.Add(1)
		return []byte(fmt.Sprintf("<svg cells=%d/>", len(c.Cells))), nil
	}

	opts := Options{Collaborators: []avatar.Collaborator{{Name: "Ann"}}}
	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if renders.Load() != 1 {
		t.Errorf("renders = %d, want 1", renders.Load())
	}
	if !second.CacheInfo.AllHit() {
		t.Errorf("second run CacheInfo = %+v, want all hits", second.CacheInfo)
	}
	if first.Hash != second.Hash {
		t.Error("hash should be stable across runs")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached artifact differs")
	}

	opts.Refresh = true
	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if renders.Load() != 2 {
		t.Errorf("Refresh should re-render, renders = %d", renders.Load())
	}
}

func TestExecuteFileCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(fc, nil, nil)
	opts := Options{Collaborators: []avatar.Collaborator{{Name: "Ann"}}, Formats: []string{FormatJSON}}

	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.AllHit() {
		t.Errorf("CacheInfo = %+v, want all hits", res.CacheInfo)
	}
}

func TestExecuteFontFamily(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Collaborators: []avatar.Collaborator{{Name: "Ann"}},
		FontFamily:    "Georgia, serif",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte(`font-family="Georgia, serif"`)) {
		t.Errorf("svg should use the font override:\n%s", res.Artifacts[FormatSVG])
	}
}

func TestExecuteDistinctKeys(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)
	base := []avatar.Collaborator{{Name: "Ann"}}

	for _, o := range []Options{
		{Collaborators: base},
		{Collaborators: base, NoWash: true},
		{Collaborators: base, FontFamily: "Georgia"},
		{Collaborators: base, Size: size.XL},
		{Collaborators: []avatar.Collaborator{{Name: "Bo"}}},
	} {
		if _, err := r.Execute(context.Background(), o); err != nil {
			t.Fatal(err)
		}
	}
	if len(mc.data) != 5 {
		t.Errorf("cache entries = %d, want 5", len(mc.data))
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	_, err := r.Execute(context.Background(), Options{Collaborators: []avatar.Collaborator{{Name: "  "}}})
	if errors.GetCode(err) != errors.ErrCodeInvalidName {
		t.Errorf("blank name code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidName)
	}

	r.Renderers[FormatSVG] = func(*avatar.Composite, Options) ([]byte, error) {
		return nil, errors.New(errors.ErrCodeUnsupported, "boom")
	}
	_, err = r.Execute(context.Background(), Options{Collaborators: []avatar.Collaborator{{Name: "Ann"}}})
	if err == nil || !strings.Contains(err.Error(), "svg") {
		t.Errorf("render error = %v, want one naming svg", err)
	}
	if errors.GetCode(err) != errors.ErrCodeUnsupported {
		t.Errorf("render error code = %s", errors.GetCode(err))
	}
}

func TestHashStable(t *testing.T) {
	c1, err := avatar.Compose([]avatar.Collaborator{{Name: "Ann"}}, size.MD)
	if err != nil {
		t.Fatal(err)
	}
	c2, _ := avatar.Compose([]avatar.Collaborator{{Name: "Ann"}}, size.MD)
	c3, _ := avatar.Compose([]avatar.Collaborator{{Name: "Ann"}}, size.SM)

	h1, _ := Hash(c1)
	h2, _ := Hash(c2)
	h3, _ := Hash(c3)
	if h1 != h2 {
		t.Error("equal composites should hash equally")
	}
	if h1 == h3 {
		t.Error("different sizes should hash differently")
	}
}

func TestExecuteInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ann.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Collaborators: []avatar.Collaborator{
			{Name: "Ann", ImageSource: path},
			{Name: "Bo", ImageSource: filepath.Join(t.TempDir(), "missing.png")},
		},
		Inline: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if img, ok := res.Composite.Cells[0].Image(); !ok || !strings.HasPrefix(img.Source, "data:image/png;base64,") {
		t.Errorf("cell 0 = %+v, want inlined image", res.Composite.Cells[0])
	}
	if _, ok := res.Composite.Cells[1].Glyph(); !ok {
		t.Errorf("cell 1 = %+v, want glyph fallback", res.Composite.Cells[1])
	}
	if res.Stats.Collaborators != 2 {
		t.Errorf("Collaborators = %d", res.Stats.Collaborators)
	}
}
