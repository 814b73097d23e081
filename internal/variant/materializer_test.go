package variant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"famcontents/internal/generation"
)

func countingThunk(calls *atomic.Int32) Thunk {
	return func(context.Context) (generation.Result, error) {
		calls.Add(1)
		return generation.Fallback(generation.KindX, generation.NewAssembler(0, nil).Assemble(generation.Input{Title: "春の新メニュー"})), nil
	}
}

func TestMaterializeReturnsSameVariant(t *testing.T) {
	store := NewMemoryStore()
	m := NewMaterializer(store, nil)
	var calls atomic.Int32

	first, err := m.Materialize(context.Background(), "c1", generation.KindX, countingThunk(&calls))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	second, err := m.Materialize(context.Background(), "c1", generation.KindX, countingThunk(&calls))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected an id")
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second call returned a different variant (-first +second):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected thunk to run once, ran %d times", calls.Load())
	}
	if first.Status != StatusDraft || first.Source != generation.SourceFallback {
		t.Fatalf("unexpected variant %+v", first)
	}
	if _, err := first.DecodeBody(); err != nil {
		t.Fatalf("stored body does not decode: %v", err)
	}
}

func TestMaterializeConcurrentCallersShareOneRun(t *testing.T) {
	store := NewMemoryStore()
	m := NewMaterializer(store, nil)
	var calls atomic.Int32

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.Materialize(context.Background(), "c1", generation.KindNote, countingThunk(&calls))
			if err != nil {
				t.Errorf("Materialize returned error: %v", err)
				return
			}
			ids[i] = v.ID
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one thunk run, got %d", calls.Load())
	}
	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("callers observed different ids: %v", ids)
		}
	}
	all, _ := store.List(context.Background(), Filter{})
	if len(all) != 1 {
		t.Fatalf("expected a single stored variant, got %d", len(all))
	}
}

func TestMaterializeDistinctKeysAreIndependent(t *testing.T) {
	m := NewMaterializer(NewMemoryStore(), nil)
	var calls atomic.Int32
	a, _ := m.Materialize(context.Background(), "c1", generation.KindX, countingThunk(&calls))
	b, _ := m.Materialize(context.Background(), "c1", generation.KindLine, countingThunk(&calls))
	c, _ := m.Materialize(context.Background(), "c2", generation.KindX, countingThunk(&calls))
	if a.ID == b.ID || a.ID == c.ID {
		t.Fatal("distinct keys must produce distinct variants")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected three thunk runs, got %d", calls.Load())
	}
}

func TestMaterializeThunkErrorPersistsNothing(t *testing.T) {
	store := NewMemoryStore()
	m := NewMaterializer(store, nil)
	boom := errors.New("boom")

	_, err := m.Materialize(context.Background(), "c1", generation.KindX, func(context.Context) (generation.Result, error) {
		return generation.Result{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected thunk error, got %v", err)
	}
	if v, _ := store.Find(context.Background(), Key{ContentID: "c1", Channel: generation.KindX}); v != nil {
		t.Fatalf("expected nothing stored, found %+v", v)
	}

	var calls atomic.Int32
	if _, err := m.Materialize(context.Background(), "c1", generation.KindX, countingThunk(&calls)); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected retry to run the thunk, got %d", calls.Load())
	}
}

// racyStore hides an existing variant from the first lookups, the way a
// second process's insert is invisible until it commits.
type racyStore struct {
	*MemoryStore
	hidden atomic.Int32
}

func (r *racyStore) Find(ctx context.Context, key Key) (*Variant, error) {
	if r.hidden.Add(-1) >= 0 {
		return nil, nil
	}
	return r.MemoryStore.Find(ctx, key)
}

func TestMaterializeConflictingInsertReturnsWinner(t *testing.T) {
	inner := NewMemoryStore()
	winner := &Variant{ID: "winner", ContentID: "c1", Channel: generation.KindX, Status: StatusReview}
	if err := inner.Create(context.Background(), winner); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := &racyStore{MemoryStore: inner}
	store.hidden.Store(2)

	var calls atomic.Int32
	got, err := NewMaterializer(store, nil).Materialize(context.Background(), "c1", generation.KindX, countingThunk(&calls))
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if got.ID != "winner" || got.Status != StatusReview {
		t.Fatalf("expected stored winner, got %+v", got)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected the local thunk to have run once, got %d", calls.Load())
	}
}
