// Package store persists contents, task configurations, and variants in
// SQLite.
//
// The database lives at config.DatabasePath and runs in WAL mode with a busy
// timeout so the CLI and the daemon can share it. The variants table carries
// a unique (content_id, channel) constraint; Create is a conditional insert
// that reports variant.ErrExists when another writer won.
package store
