// Package document implements the wire contract of a prototype: the single
// JSON-compatible document carrying screens, transitions, interactions and
// variables that every host produces and consumes.
//
// Decoding goes through a generic map so the same code serves JSON, YAML and
// front-matter metadata:
//
//	proto, err := document.Parse(data, document.FormatAuto)
//
// Times are milliseconds. Easing is a curve name, a four-number cubic-bezier
// array or a tagged object. Triggers and actions are objects tagged by "type".
// Malformed triggers decode to domain.InvalidTrigger rather than failing the
// whole document, so one broken edge never prevents a prototype from playing.
package document
