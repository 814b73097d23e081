// Package daemon coordinates the long-running famd process.
//
// It wires the application service into an HTTP server and a periodic trash
// purge, with flock-based locking to prevent multiple daemons from serving
// the same data directory. Request handling stays thin: every handler
// decodes its input, calls api.Service, and maps error markers from
// internal/services to HTTP status codes.
package daemon
