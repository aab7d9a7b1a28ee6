// Package sink writes composite avatars in output formats.
//
// [RenderSVG] is the primary renderer; [RenderPNG] and [RenderPDF] convert
// its output, and [RenderJSON] serializes the resolved composite for clients
// that draw it themselves.
//
// Every SVG is clipped to the composite's circular mask and ringed with its
// border. Image tiles are cropped to cover their tile and receive a light
// wash; fallback tiles draw their initial on a gray fill, offset toward the
// outer corner when the glyph alignment asks for it.
package sink
