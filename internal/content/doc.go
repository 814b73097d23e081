// Package content defines the content item that variants are generated from.
//
// A Content carries the subject (title, summary), the target channels, the
// reference material and the voice settings. ToInput converts it into the raw
// generation input consumed by the context assembler.
package content
