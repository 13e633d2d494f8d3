package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// fakeAPI is a scriptable server-side cart. Its Fetch can be blocked to
// simulate a slow response overtaking a newer mutation.
type fakeAPI struct {
	mu    sync.Mutex
	items []Item

	failAdd    bool
	failUpdate bool
	failRemove bool
	failFetch  bool

	fetchGate chan struct{} // when set, Fetch blocks until the gate closes
	addCalls  int
	fetches   int
}

var errServer = errors.New("server rejected the request")

func item(id, productID, qty int, unit int64) Item {
	it := Item{
		ID:        id,
		ProductID: productID,
		Title:     "p",
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(unit),
		Stock:     100,
		IsActive:  true,
	}
	it.recalcLineTotal()
	return it
}

func (f *fakeAPI) Fetch(ctx context.Context) ([]Item, error) {
	f.mu.Lock()
	gate := f.fetchGate
	f.fetches++
	if f.failFetch {
		f.mu.Unlock()
		return nil, errServer
	}
	out := make([]Item, len(f.items))
	copy(out, f.items)
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return out, nil
}

func (f *fakeAPI) Add(ctx context.Context, productID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.failAdd {
		return errServer
	}
	f.items = append(f.items, item(1000+f.addCalls, productID, qty, 10_000))
	return nil
}

func (f *fakeAPI) UpdateQuantity(ctx context.Context, itemID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errServer
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Quantity = qty
			f.items[i].recalcLineTotal()
			return nil
		}
	}
	return errServer
}

func (f *fakeAPI) Remove(ctx context.Context, itemID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRemove {
		return errServer
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errServer
}

func (f *fakeAPI) serverItems() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}

func sameItems(t *testing.T, got, want []Item) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("item count mismatch: got %d want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].ID != want[i].ID || got[i].Quantity != want[i].Quantity {
			t.Fatalf("item %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestAddProduct_ConvergesToServerState(t *testing.T) {
	f := &fakeAPI{}
	s := NewStore(f)
	ctx := context.Background()

	for _, pid := range []int{101, 102, 103} {
		if err := s.AddProduct(ctx, pid, 2); err != nil {
			t.Fatalf("add %d: %v", pid, err)
		}
	}

	// the local cart must equal the server cart after every add
	sameItems(t, s.Items(), f.serverItems())
	if s.Phase() != PhaseIdle {
		t.Fatalf("expected idle phase, got %v", s.Phase())
	}
}

func TestAddProduct_FailureLeavesStateUntouched(t *testing.T) {
	f := &fakeAPI{items: []Item{item(1, 101, 1, 100_000)}}
	s := NewStore(f)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	f.failAdd = true
	if err := s.AddProduct(ctx, 102, 1); err == nil {
		t.Fatal("expected add failure")
	}
	// stale, not wrong: the cached item set is unchanged
	sameItems(t, s.Items(), []Item{item(1, 101, 1, 100_000)})
}

func TestUpdateQuantity_OptimisticThenConfirmed(t *testing.T) {
	f := &fakeAPI{items: []Item{item(1, 101, 1, 100_000)}}
	s := NewStore(f)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := s.UpdateQuantity(ctx, 1, 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Item(1)
	if got.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", got.Quantity)
	}
	if !got.LineTotal.Equal(decimal.NewFromInt(500_000)) {
		t.Fatalf("line total not recomputed: %s", got.LineTotal)
	}
	sameItems(t, s.Items(), f.serverItems())
}

func TestUpdateQuantity_FailureRestoresPriorValue(t *testing.T) {
	f := &fakeAPI{items: []Item{item(1, 101, 3, 100_000)}}
	s := NewStore(f)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	f.failUpdate = true
	if err := s.UpdateQuantity(ctx, 1, 9); err == nil {
		t.Fatal("expected update failure")
	}

	// the compensating action restores exactly the recorded prior value,
	// which is also the server's authoritative quantity
	got, ok := s.Item(1)
	if !ok {
		t.Fatal("item vanished")
	}
	if got.Quantity != 3 {
		t.Fatalf("expected rollback to 3, got %d", got.Quantity)
	}
	if !got.LineTotal.Equal(decimal.NewFromInt(300_000)) {
		t.Fatalf("line total not restored: %s", got.LineTotal)
	}
}

func TestUpdateQuantity_UnknownItem(t *testing.T) {
	s := NewStore(&fakeAPI{})
	if err := s.UpdateQuantity(context.Background(), 404, 2); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestRemove_SuccessDropsLocally(t *testing.T) {
	f := &fakeAPI{items: []Item{item(1, 101, 1, 100_000), item(2, 102, 2, 50_000)}}
	s := NewStore(f)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := s.Remove(ctx, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Item(1); ok {
		t.Fatal("item 1 still cached after remove")
	}
	sameItems(t, s.Items(), f.serverItems())
}

func TestRemove_FailureTriggersRefetch(t *testing.T) {
	f := &fakeAPI{items: []Item{item(1, 101, 1, 100_000)}}
	s := NewStore(f)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	before := f.fetches

	f.failRemove = true
	if err := s.Remove(ctx, 1); err == nil {
		t.Fatal("expected remove failure")
	}
	if f.fetches != before+1 {
		t.Fatalf("expected a reconciling refetch, fetches=%d", f.fetches)
	}
	sameItems(t, s.Items(), f.serverItems())
}

// A slow refetch that was overtaken by a local mutation must be discarded
// rather than clobbering the newer state.
func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	f := &fakeAPI{items: []Item{item(1, 101, 1, 100_000)}}
	s := NewStore(f)
	ctx := context.Background()
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	gate := make(chan struct{})
	f.mu.Lock()
	f.fetchGate = gate
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()

	// while the fetch is parked, a local optimistic write advances the
	// generation (the fake's update keeps working)
	f.mu.Lock()
	f.fetchGate = nil
	f.mu.Unlock()
	if err := s.UpdateQuantity(ctx, 1, 7); err != nil {
		t.Fatalf("update: %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("stale refresh returned error: %v", err)
	}

	got, _ := s.Item(1)
	if got.Quantity != 7 {
		t.Fatalf("stale response overwrote newer state: quantity %d", got.Quantity)
	}
}

func TestSubtotalAndOnChange(t *testing.T) {
	f := &fakeAPI{items: []Item{item(1, 101, 1, 100_000), item(2, 102, 3, 50_000)}}
	s := NewStore(f)

	changes := 0
	s.SetOnChange(func() { changes++ })

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if want := decimal.NewFromInt(250_000); !s.Subtotal().Equal(want) {
		t.Fatalf("subtotal %s, want %s", s.Subtotal(), want)
	}
	if changes != 1 {
		t.Fatalf("expected 1 change notification, got %d", changes)
	}
}
