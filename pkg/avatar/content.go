package avatar

import (
	"encoding/json"
	"fmt"
)

// Image tile defaults.
const (
	ImageFit        = "cover"
	ImageBackground = "#EFEFEF"
)

// Content kinds.
const (
	KindImage = "image"
	KindGlyph = "glyph"
)

// Content is what a tile shows: either an [ImageContent] or a
// [GlyphContent]. The set is closed.
type Content interface {
	Kind() string
	isContent()
}

// ImageContent fills a tile with a collaborator's picture, cropped to cover
// the tile, with a translucent wash composited above it.
type ImageContent struct {
	Source     string `json:"source"`
	AltText    string `json:"alt"`
	Fit        string `json:"fit"`
	Background string `json:"background"`
	Wash       bool   `json:"wash"`
}

// GlyphContent shows a fallback initial.
type GlyphContent struct {
	Glyph Glyph `json:"glyph"`
}

func (ImageContent) Kind() string { return KindImage }
func (GlyphContent) Kind() string { return KindGlyph }

func (ImageContent) isContent() {}
func (GlyphContent) isContent() {}

// Cell pairs a tile with its alignment and resolved content.
type Cell struct {
	Index     int
	Tile      Tile
	Alignment TextAlignment
	Content   Content
}

// Image returns the image content and true if the cell shows an image.
func (c Cell) Image() (ImageContent, bool) {
	img, ok := c.Content.(ImageContent)
	return img, ok
}

// Glyph returns the glyph and true if the cell shows a fallback initial.
func (c Cell) Glyph() (Glyph, bool) {
	g, ok := c.Content.(GlyphContent)
	return g.Glyph, ok
}

type cellJSON struct {
	Index     int           `json:"index"`
	Tile      Tile          `json:"tile"`
	Alignment TextAlignment `json:"alignment"`
	Kind      string        `json:"kind"`
	Image     *ImageContent `json:"image,omitempty"`
	Glyph     *Glyph        `json:"glyph,omitempty"`
}

// MarshalJSON encodes the content as a kind-tagged object.
func (c Cell) MarshalJSON() ([]byte, error) {
	out := cellJSON{Index: c.Index, Tile: c.Tile, Alignment: c.Alignment}
	switch v := c.Content.(type) {
	case ImageContent:
		out.Kind = KindImage
		out.Image = &v
	case GlyphContent:
		out.Kind = KindGlyph
		out.Glyph = &v.Glyph
	default:
		return nil, fmt.Errorf("cell %d: unknown content %T", c.Index, c.Content)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the kind-tagged form written by MarshalJSON.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var in cellJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.Index, c.Tile, c.Alignment = in.Index, in.Tile, in.Alignment
	switch {
	case in.Kind == KindImage && in.Image != nil:
		c.Content = *in.Image
	case in.Kind == KindGlyph && in.Glyph != nil:
		c.Content = GlyphContent{Glyph: *in.Glyph}
	default:
		return fmt.Errorf("cell %d: unknown content kind %q", in.Index, in.Kind)
	}
	return nil
}
