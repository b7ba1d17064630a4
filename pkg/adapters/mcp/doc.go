// Package mcp exposes preview sessions to Model Context Protocol clients.
//
// Tools mirror the HTTP host: start_session, send_event, advance, navigate,
// set_variable, reset_session and get_session, all on virtual time. The
// prototype document is readable as the keyframe://document resource.
package mcp
