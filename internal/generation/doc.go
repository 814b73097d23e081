// Package generation turns a content description into a channel-specific,
// schema-conforming JSON body.
//
// The pipeline runs Assemble → Compile → invoke → normalize. When the backend
// is unconfigured or the call fails (transport error, bad status, unparsable or
// structurally invalid JSON) the per-kind deterministic fallback produces the
// body instead, and the same normalizer runs over it. Callers only learn which
// path ran from Result.Source and Result.FailureReason; the body shape is
// identical either way.
//
// Every Kind maps to exactly one task definition (rules, schema example,
// required fields, fallback, body factory). The table is checked for
// completeness at init. Unknown kinds resolve to the generic definition.
package generation
