package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"famcontents/internal/generation"
	"famcontents/internal/testsupport"
	"famcontents/internal/variant"
)

// Two stores over one database stand in for two processes: their
// materializers cannot share a flight, so the unique key decides.
func TestMaterializeAcrossConnectionsKeepsOneVariant(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a := testsupport.MustOpenStore(t, cfg)
	b := testsupport.MustOpenStore(t, cfg)
	c := testsupport.NewContent(t, a, "共有", generation.KindX)

	var calls atomic.Int32
	thunk := func(context.Context) (generation.Result, error) {
		calls.Add(1)
		return generation.Fallback(generation.KindX, generation.NewAssembler(0, nil).Assemble(generation.Input{Title: "共有"})), nil
	}

	materializers := []*variant.Materializer{
		variant.NewMaterializer(a, nil),
		variant.NewMaterializer(b, nil),
	}
	ids := make([]string, 8)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := materializers[i%2].Materialize(context.Background(), c.ID, generation.KindX, thunk)
			if err != nil {
				t.Errorf("Materialize: %v", err)
				return
			}
			ids[i] = v.ID
		}()
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("callers saw different variants: %v", ids)
		}
	}
	all, err := a.List(context.Background(), variant.Filter{ContentID: c.ID, IncludeTrashed: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one stored variant, got %d", len(all))
	}
	if n := calls.Load(); n < 1 || n > 2 {
		t.Fatalf("expected one thunk run per connection at most, got %d", n)
	}
}

func TestMaterializeRepeatReturnsEqualVariant(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	c := testsupport.NewContent(t, st, "再取得", generation.KindNote)

	var calls atomic.Int32
	thunk := func(context.Context) (generation.Result, error) {
		calls.Add(1)
		return generation.Fallback(generation.KindNote, generation.NewAssembler(0, nil).Assemble(generation.Input{Title: "再取得"})), nil
	}
	ctx := context.Background()
	first, err := variant.NewMaterializer(st, nil).Materialize(ctx, c.ID, generation.KindNote, thunk)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	second, err := variant.NewMaterializer(st, nil).Materialize(ctx, c.ID, generation.KindNote, thunk)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("stored variant differs from the created one (-first +second):\n%s", diff)
	}

	// A separate connection reads the row without the cache.
	other := testsupport.MustOpenStore(t, cfg)
	third, err := variant.NewMaterializer(other, nil).Materialize(ctx, c.ID, generation.KindNote, thunk)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if diff := cmp.Diff(first, third); diff != "" {
		t.Fatalf("variant read back from disk differs (-first +third):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one thunk run, got %d", calls.Load())
	}
}
