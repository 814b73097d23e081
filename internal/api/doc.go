// Package api is the application facade shared by the fam CLI and the famd
// HTTP daemon. It wires configuration, the SQLite store, the generation
// pipeline, the variant service and the diff engine together, and
// translates internal models into transport-friendly DTOs.
//
// # Key Types
//
// Service: entry point for every operation exposed over HTTP or the CLI
// (status, one-shot generation, content CRUD, variant materialization and
// review transitions, task configuration, diff, proofread, seed import).
//
// ContentView, VariantView, TaskConfigView: DTOs for the stored records.
//
// GenerateResponse: a generation result with its provenance and, for
// backend failures, the verbatim failure reason.
//
// DiffResponse/ProofreadResponse: highlight segments plus pre-rendered HTML.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Generated
// bodies are passed through as json.RawMessage so their snake_case schema
// keys reach clients unchanged. Timestamps use RFC3339 with milliseconds.
//
// Preview renders a variant body to HTML. note bodies carry markdown and are
// rendered with goldmark; other channels are first laid out as markdown so
// every preview goes through the same renderer.
package api
