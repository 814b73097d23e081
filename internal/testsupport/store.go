package testsupport

import (
	"context"
	"testing"

	"famcontents/internal/config"
	"famcontents/internal/content"
	"famcontents/internal/generation"
	"famcontents/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewContent inserts a content item targeting channels.
func NewContent(t testing.TB, st *store.Store, title string, channels ...generation.Kind) *content.Content {
	t.Helper()

	item, err := st.CreateContent(context.Background(), &content.Content{
		Title:    title,
		Summary:  title + "の概要",
		Channels: channels,
	})
	if err != nil {
		t.Fatalf("store.CreateContent: %v", err)
	}
	return item
}
