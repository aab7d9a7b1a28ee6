// Package pkg holds the facepile libraries.
//
// # Overview
//
// Facepile draws one circular avatar for a group of up to three
// collaborators. Each collaborator gets a tile of the circle holding either
// their picture or the first letter of their name.
//
//  1. [size] - Size presets (xs..xl)
//  2. [avatar] - Tiling, glyph fallback and composite assembly
//  3. [render/sink] - SVG, JSON, PNG and PDF output
//  4. [pipeline] - Compose → render with artifact caching
//  5. [server] - HTTP API over the pipeline
//
// Supporting packages: [cache] (file and Redis artifact stores), [config]
// (TOML group files), [httputil] (image inlining), [observability] (hooks),
// [tooltip] (hover label props for UI hosts) and [errors] (coded errors).
//
// # Data Flow
//
//	collaborators + size
//	         ↓
//	    [avatar.Compose] (tiles, alignment, glyph or image per cell)
//	         ↓
//	    [sink.RenderSVG] and friends
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// [size]: github.com/matzehuels/facepile/pkg/size
// [avatar]: github.com/matzehuels/facepile/pkg/avatar
// [render/sink]: github.com/matzehuels/facepile/pkg/render/sink
// [pipeline]: github.com/matzehuels/facepile/pkg/pipeline
// [server]: github.com/matzehuels/facepile/pkg/server
// [cache]: github.com/matzehuels/facepile/pkg/cache
// [config]: github.com/matzehuels/facepile/pkg/config
// [httputil]: github.com/matzehuels/facepile/pkg/httputil
// [observability]: github.com/matzehuels/facepile/pkg/observability
// [tooltip]: github.com/matzehuels/facepile/pkg/tooltip
// [errors]: github.com/matzehuels/facepile/pkg/errors
// [avatar.Compose]: github.com/matzehuels/facepile/pkg/avatar.Compose
// [sink.RenderSVG]: github.com/matzehuels/facepile/pkg/render/sink.RenderSVG
package pkg
