package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Phase is the store's position in its mutation cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMutating
	PhaseReconciling
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMutating:
		return "mutating"
	case PhaseReconciling:
		return "reconciling"
	}
	return "unknown"
}

// Store is the single source of truth for cart view-state within a session.
// It mediates between callers and the cart endpoints with an explicit
// consistency contract:
//
//   - adds are never optimistic; the cart is refetched after the server
//     confirms, since the server may recompute prices or clamp stock
//   - quantity updates are optimistic; the prior value is recorded and
//     restored exactly on failure
//   - refetches carry a generation counter so a response from a superseded
//     request is discarded instead of overwriting newer state
type Store struct {
	mu    sync.RWMutex
	api   API
	items []Item
	phase Phase
	// gen advances on every local write; reads started before the latest
	// write must not apply their result.
	gen      uint64
	onChange func()
}

func NewStore(api API) *Store {
	return &Store{api: api}
}

// SetOnChange registers a callback fired after every applied state change.
// The coupon applier keys its revalidation on it.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Items returns a snapshot copy of the cached cart.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Item looks a cached row up by cart item id.
func (s *Store) Item(itemID int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(itemID); i >= 0 {
		return s.items[i], true
	}
	return Item{}, false
}

// Subtotal sums the cached line totals.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Subtotal(s.items)
}

// Count is the number of distinct cart rows.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Phase reports where the store is in its mutation cycle.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Refresh replaces the cache with the server cart. A refresh that was
// overtaken by a local mutation is discarded.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	s.phase = PhaseReconciling
	s.mu.Unlock()

	items, err := s.api.Fetch(ctx)

	s.mu.Lock()
	s.phase = PhaseIdle
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.gen != gen {
		// a newer local write landed while this fetch was in flight
		s.mu.Unlock()
		return nil
	}
	s.items = items
	s.mu.Unlock()

	s.notify()
	return nil
}

// AddProduct adds to the server cart and then refetches unconditionally.
// On failure the cache is left untouched (stale, never wrong-er).
func (s *Store) AddProduct(ctx context.Context, productID, qty int) error {
	s.setPhase(PhaseMutating)
	if err := s.api.Add(ctx, productID, qty); err != nil {
		s.setPhase(PhaseIdle)
		return err
	}
	return s.Refresh(ctx)
}

// UpdateQuantity writes the new quantity optimistically, then confirms with
// the server. On failure the recorded prior quantity is restored; if the row
// disappeared locally in the meantime, the store falls back to a full
// refetch. The store does not clamp qty; callers own the >= 1 floor.
func (s *Store) UpdateQuantity(ctx context.Context, itemID, qty int) error {
	s.mu.Lock()
	i := s.index(itemID)
	if i < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	prior := s.items[i].Quantity
	s.items[i].Quantity = qty
	s.items[i].recalcLineTotal()
	s.gen++
	s.phase = PhaseMutating
	s.mu.Unlock()
	s.notify()

	if err := s.api.UpdateQuantity(ctx, itemID, qty); err != nil {
		s.mu.Lock()
		i = s.index(itemID)
		if i < 0 {
			// compensation target is gone; reconcile coarsely
			s.mu.Unlock()
			_ = s.Refresh(ctx)
			return err
		}
		s.items[i].Quantity = prior
		s.items[i].recalcLineTotal()
		s.gen++
		s.phase = PhaseIdle
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.setPhase(PhaseIdle)
	return nil
}

// Remove deletes the item on the server first, then drops it from the
// cache; a failed delete triggers a full refetch in case the server state
// drifted.
func (s *Store) Remove(ctx context.Context, itemID int) error {
	s.setPhase(PhaseMutating)
	if err := s.api.Remove(ctx, itemID); err != nil {
		_ = s.Refresh(ctx)
		return err
	}

	s.mu.Lock()
	if i := s.index(itemID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.gen++
	s.phase = PhaseIdle
	s.mu.Unlock()

	s.notify()
	return nil
}

// index must be called with the lock held.
func (s *Store) index(itemID int) int {
	for i := range s.items {
		if s.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (s *Store) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
