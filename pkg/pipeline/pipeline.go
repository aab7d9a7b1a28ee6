// Package pipeline runs the compose → render pipeline shared by the CLI and
// the HTTP server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Compose: validate collaborators and resolve tiles and content
//  2. Render: produce each requested format (SVG, JSON, PNG, PDF)
//
// Rendered artifacts are cached by the composite's content hash, so a
// group that has already been drawn at a size is served without
// re-rendering.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Collaborators: []avatar.Collaborator{{Name: "Ann"}, {Name: "Bo", ImageSource: "bo.png"}},
//	    Size:          size.MD,
//	    Formats:       []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/facepile/pkg/avatar"
	"github.com/matzehuels/facepile/pkg/cache"
	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/size"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// MaxScale bounds PNG scale so a request cannot ask for huge rasters.
	MaxScale = 8.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	Collaborators []avatar.Collaborator `json:"collaborators"`
	Size          size.Class            `json:"size,omitempty"`
	Formats       []string              `json:"formats,omitempty"`
	Scale         float64               `json:"scale,omitempty"`
	NoWash        bool                  `json:"no_wash,omitempty"`
	Title         string                `json:"title,omitempty"`
	FontFamily    string                `json:"font_family,omitempty"`
	Refresh       bool                  `json:"refresh,omitempty"`
	// Inline replaces image sources with data: URIs before rendering.
	Inline bool `json:"inline,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Composite *avatar.Composite
	Hash      string
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Collaborators int
	Cells         int
	ComposeTime   time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks which formats were served from cache.
type CacheInfo struct {
	Hits   []string
	Misses []string
}

// AllHit reports whether every artifact came from cache.
func (c CacheInfo) AllHit() bool { return len(c.Misses) == 0 && len(c.Hits) > 0 }

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in size md, format
// svg and scale 2. Duplicate formats are removed.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Collaborators) == 0 {
		return errors.New(errors.ErrCodeInvalidCount, "at least one collaborator is required")
	}
	if o.Size == "" {
		o.Size = size.Default
	}
	if err := o.Size.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	slices.Sort(o.Formats)
	o.Formats = slices.Compact(o.Formats)
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be between 0 and %v, got %v", MaxScale, o.Scale)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for a format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Wash: !o.NoWash, Title: o.Title, Font: o.FontFamily}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
