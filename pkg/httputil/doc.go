// Package httputil fetches collaborator images so they can be inlined.
//
// # Overview
//
// rsvg-convert does not load remote images, so PNG and PDF output would
// show empty tiles for collaborators whose image is a URL. A [Fetcher]
// resolves each image source to a data: URI before rendering:
//
//   - http(s) URLs are downloaded with retry on transient failures
//   - local paths are read from disk
//   - data: URIs pass through unchanged
//
// # Caching
//
// Downloaded images are stored in a [cache.Cache] under "image:<sha256>" so
// repeated renders of the same group do not hit the network.
//
// # Fallback
//
// [Fetcher.Inline] never fails a render because of one bad image. A
// collaborator whose image cannot be fetched loses the image and is drawn
// with the initial glyph instead.
//
// [cache.Cache]: github.com/matzehuels/facepile/pkg/cache.Cache
package httputil
