// Package variant owns channel-specific variants of a content item.
//
// A variant is created at most once per (content, channel) pair. The
// Materializer collapses concurrent requests for one pair and relies on the
// store's conditional insert so separate processes sharing a database agree
// on a single winner. Service layers batch generation and the review status
// machine on top.
package variant
