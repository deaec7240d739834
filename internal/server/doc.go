// Package server serves the status page, the site document and the status
// API over HTTP.
//
// The page is server-rendered by internal/view. Live updates reach the
// browser as Server-Sent Events carrying the re-rendered status fragment,
// so the page script only swaps markup and never re-implements rendering.
package server
