// Package server serves rendered group avatars over HTTP.
//
// # Routes
//
//	GET  /healthz                       liveness (and cache reachability)
//	GET  /v1/avatar.{format}?size=&c=   rendered artifact (svg, png, pdf, json)
//	POST /v1/avatar                     JSON body, returns hash, cells and SVG
//	GET  /v1/layout?count=&size=        tile rectangles for a count and size
//
// Collaborators in the query string use repeated c parameters of the form
// "Name" or "Name|https://host/image.png".
//
// # Middleware
//
// Every route runs behind panic recovery, request IDs (X-Request-ID),
// access logging, observability hooks and a per-IP rate limit.
//
// The server never reads local files: image sources must be http(s) URLs
// or data: URIs.
package server
