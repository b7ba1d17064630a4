// Package http exposes preview sessions over HTTP.
//
// Each session lives in a snapshot store and runs on a virtual clock that the
// client moves with POST /sessions/{id}/advance, so a browser can request one
// frame per animation tick and get deterministic output. Requests are checked
// against the embedded OpenAPI contract before they reach a handler, and
// every state change is pushed as a snapshot diff to the SSE subscribers of
// GET /sessions/{id}/stream.
package http
