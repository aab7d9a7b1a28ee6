// Package render converts rendered SVG into raster and print formats.
//
// # Overview
//
// Composite avatars are always drawn as SVG first (see [sink]). The [ToPDF]
// and [ToPNG] functions convert that SVG using the external rsvg-convert
// tool from librsvg:
//
//	svg := sink.RenderSVG(composite)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/facepile/pkg/render/sink
package render
