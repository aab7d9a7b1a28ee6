package avatar

import (
	"math"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/facepile/pkg/errors"
	"github.com/matzehuels/facepile/pkg/size"
)

// Fallback tile colors.
const (
	GlyphBackground = "gray"
	GlyphForeground = "white"
)

// Flex-style anchors for glyph placement along one axis.
const (
	AnchorStart  = "start"
	AnchorCenter = "center"
	AnchorEnd    = "end"
)

// Glyph describes a fallback tile: a single upper-cased initial on a
// neutral fill. It is a static visual with no interactive state.
type Glyph struct {
	Initial    string        `json:"initial"`
	Label      string        `json:"label"`
	Alignment  TextAlignment `json:"alignment"`
	Height     float64       `json:"height"`
	FontSize   float64       `json:"font_size"`
	LineHeight float64       `json:"line_height"`
	Padding    float64       `json:"padding"`
	Background string        `json:"background"`
	Foreground string        `json:"foreground"`
	Bold       bool          `json:"bold"`
}

// VerticalAnchor returns where the glyph sits along the tile's height.
func (g Glyph) VerticalAnchor() string {
	switch g.Alignment {
	case TopLeft:
		return AnchorStart
	case BottomLeft:
		return AnchorEnd
	}
	return AnchorCenter
}

// HorizontalAnchor returns where the glyph sits along the tile's width.
func (g Glyph) HorizontalAnchor() string {
	if g.Alignment.Offset() {
		return AnchorStart
	}
	return AnchorCenter
}

// Initial returns the first grapheme cluster of name, upper-cased.
// Multi-code-point characters such as emoji sequences or a letter followed
// by a combining accent are kept whole.
func Initial(name string) (string, error) {
	if err := errors.ValidateName(name); err != nil {
		return "", err
	}
	first, _, _, _ := uniseg.FirstGraphemeClusterInString(name, -1)
	return cases.Upper(language.Und).String(first), nil
}

// GlyphFontSize returns the rendered glyph font size for c, half the
// nominal table value.
func GlyphFontSize(c size.Class) (float64, error) {
	f, err := DefaultFontSize(c)
	if err != nil {
		return 0, err
	}
	return f / 2, nil
}

// QuadrantPadding returns the diagonal inset applied to off-center glyphs:
// the gap between the glyph and the frame radius, projected at 45°.
func QuadrantPadding(c size.Class) (float64, error) {
	diameter, err := FrameDiameter(c)
	if err != nil {
		return 0, err
	}
	fontSize, err := GlyphFontSize(c)
	if err != nil {
		return 0, err
	}
	return math.Floor((diameter/2 - fontSize) / 2 * math.Sin(45*math.Pi/180)), nil
}

// RenderFallback builds the glyph shown in a tile of height tileHeight for a
// collaborator without an image.
func RenderFallback(tileHeight float64, name string, align TextAlignment, c size.Class) (Glyph, error) {
	if tileHeight <= 0 || math.IsNaN(tileHeight) || math.IsInf(tileHeight, 0) {
		return Glyph{}, errors.New(errors.ErrCodeInvalidFrame, "tile height must be a positive number, got %v", tileHeight)
	}
	if !align.Valid() {
		return Glyph{}, errors.New(errors.ErrCodeInvalidAlignment, "unknown text alignment %d", int(align))
	}
	if err := c.Validate(); err != nil {
		return Glyph{}, err
	}
	initial, err := Initial(name)
	if err != nil {
		return Glyph{}, err
	}

	fontSize, err := GlyphFontSize(c)
	if err != nil {
		return Glyph{}, err
	}
	var padding float64
	if align.Offset() {
		if padding, err = QuadrantPadding(c); err != nil {
			return Glyph{}, err
		}
	}

	return Glyph{
		Initial:    initial,
		Label:      name,
		Alignment:  align,
		Height:     tileHeight,
		FontSize:   fontSize,
		LineHeight: fontSize,
		Padding:    padding,
		Background: GlyphBackground,
		Foreground: GlyphForeground,
		Bold:       true,
	}, nil
}
