package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/facepile/pkg/avatar"
)

const (
	defaultID         = "facepile"
	defaultFontFamily = "-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, sans-serif"
	washColor         = "#000"
	washOpacity       = 0.04
)

// palette maps named design colors to hex values. Unknown names pass through.
var palette = map[string]string{
	"white":    "#fff",
	"gray":     "#8e8e8e",
	"darkGray": "#111",
}

func color(name string) string {
	if hex, ok := palette[name]; ok {
		return hex
	}
	return name
}

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	id         string
	title      string
	wash       bool
	fontFamily string
}

// WithID sets the prefix for element IDs, so several avatars can be inlined
// into one document.
func WithID(id string) SVGOption { return func(r *svgRenderer) { r.id = id } }

// WithTitle overrides the accessible title. By default the collaborator
// names are joined with commas.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithWash toggles the translucent overlay on image tiles.
func WithWash(on bool) SVGOption { return func(r *svgRenderer) { r.wash = on } }

// WithFontFamily sets the font stack used for fallback initials.
func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFamily = f } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{id: defaultID, wash: true, fontFamily: defaultFontFamily}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws c as a standalone SVG document.
func RenderSVG(c *avatar.Composite, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	ring := c.Mask.RingWidth
	outer := c.Mask.Diameter + 2*ring
	radius := c.Mask.Diameter / 2
	title := r.title
	if title == "" {
		title = Title(c)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f" role="img" aria-label="%s">`+"\n",
		-ring, -ring, outer, outer, outer, outer, EscapeXML(title))
	fmt.Fprintf(&buf, "  <title>%s</title>\n", EscapeXML(title))

	clipID := r.id + "-clip"
	fmt.Fprintf(&buf, `  <defs><clipPath id="%s"><circle cx="%.1f" cy="%.1f" r="%.1f"/></clipPath></defs>`+"\n",
		clipID, radius, radius, radius)

	fmt.Fprintf(&buf, `  <g clip-path="url(#%s)">`+"\n", clipID)
	fmt.Fprintf(&buf, `    <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		c.Mask.Diameter, c.Mask.Diameter, color(c.Mask.Fill))
	for _, cell := range c.Cells {
		switch content := cell.Content.(type) {
		case avatar.ImageContent:
			r.renderImage(&buf, cell.Tile, content)
		case avatar.GlyphContent:
			r.renderGlyph(&buf, cell.Tile, content.Glyph)
		}
	}
	buf.WriteString("  </g>\n")

	fmt.Fprintf(&buf, `  <circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="%.1f"/>`+"\n",
		radius, radius, radius+ring/2, color(c.Mask.RingColor), ring)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderImage(buf *bytes.Buffer, t avatar.Tile, img avatar.ImageContent) {
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		t.Left, t.Top, t.Width, t.Height, color(img.Background))
	fmt.Fprintf(buf, `    <image href="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" preserveAspectRatio="%s"><title>%s</title></image>`+"\n",
		EscapeXML(img.Source), t.Left, t.Top, t.Width, t.Height, aspectFor(img.Fit), EscapeXML(img.AltText))
	if r.wash && img.Wash {
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%.2f"/>`+"\n",
			t.Left, t.Top, t.Width, t.Height, washColor, washOpacity)
	}
}

func (r *svgRenderer) renderGlyph(buf *bytes.Buffer, t avatar.Tile, g avatar.Glyph) {
	x, y, anchor := GlyphPosition(t, g)
	weight := "normal"
	if g.Bold {
		weight = "bold"
	}
	fmt.Fprintf(buf, `    <g aria-label="%s">`+"\n", EscapeXML(g.Label))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		t.Left, t.Top, t.Width, g.Height, color(g.Background))
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="%s" dominant-baseline="central" font-family="%s" font-size="%.1f" font-weight="%s" fill="%s">%s</text>`+"\n",
		x, y, anchor, EscapeXML(r.fontFamily), g.FontSize, weight, color(g.Foreground), EscapeXML(g.Initial))
	buf.WriteString("    </g>\n")
}

// GlyphPosition returns the text origin and SVG text-anchor for a glyph in
// tile t. The y coordinate is the middle of the glyph's line box.
func GlyphPosition(t avatar.Tile, g avatar.Glyph) (x, y float64, anchor string) {
	half := g.LineHeight / 2
	switch g.VerticalAnchor() {
	case avatar.AnchorStart:
		y = t.Top + g.Padding + half
	case avatar.AnchorEnd:
		y = t.Top + g.Height - g.Padding - half
	default:
		y = t.Top + g.Height/2
	}
	if g.HorizontalAnchor() == avatar.AnchorStart {
		return t.Left + g.Padding, y, "start"
	}
	return t.CenterX(), y, "middle"
}

func aspectFor(fit string) string {
	if fit == "contain" {
		return "xMidYMid meet"
	}
	return "xMidYMid slice"
}

// Title joins the collaborator names shown in c.
func Title(c *avatar.Composite) string {
	names := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		switch content := cell.Content.(type) {
		case avatar.ImageContent:
			names = append(names, content.AltText)
		case avatar.GlyphContent:
			names = append(names, content.Glyph.Label)
		}
	}
	return strings.Join(names, ", ")
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
