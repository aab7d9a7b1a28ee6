// Package avatar computes composite ("group") avatars: a circular frame
// tiled with up to three collaborators.
//
// # Overview
//
// A composite is derived purely from a collaborator list and a size preset.
// The data flows one way:
//
//	collaborators → [Layout] → tiles → per-tile content (image or glyph) → [Composite]
//
// Nothing here draws pixels. Renderers in pkg/render/sink consume the
// [Composite] and are required to clip to its [Mask].
//
// # Tiling
//
// [Layout] supports exactly three cases:
//
//	1 collaborator:  one tile covering the frame
//	2 collaborators: two vertical halves separated by a seam of [BorderWidth]
//	3 collaborators: a tall left half plus two stacked right quarters
//
// There is no general N-way packing. [Compose] truncates longer lists to
// [MaxTiles] before calling [Layout]; [Layout] itself rejects counts it has
// no case for.
//
// # Fallback glyphs
//
// Collaborators without an image get a glyph: the upper-cased first
// grapheme of their name on a gray tile. In a three-way composite the
// right-hand glyphs are nudged toward the outer corner by a diagonal
// [QuadrantPadding] so they stay inside the circular mask.
//
// # Concurrency
//
// Every function is pure. Results share no state and may be computed from
// any number of goroutines.
package avatar
