// Package services defines shared utilities consumed by the generation
// pipeline, the variant store, and the HTTP front end.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, content IDs, channels, and task
//     kinds for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input vs missing record vs backend trouble) with errors.Is.
//
// Backend clients live in subpackages (see services/llm).
package services
