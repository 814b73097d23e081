// Package textdiff computes segment-level highlights between two texts.
//
// Texts are split into units: single newlines, and clauses that end at a run
// of sentence terminators. Units are aligned with a longest common subsequence
// over whitespace-trimmed equality, and the modified text is returned as an
// ordered list of kept and added segments. Units present only in the original
// are not reported; concatenating the segments always yields the modified
// text.
package textdiff
