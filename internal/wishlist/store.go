package wishlist

import (
	"context"
	"sync"
)

// Store tracks wishlist membership for the session. Unlike the cart store it
// is never optimistic: membership toggling is binary and low-churn, so a
// wrong cached answer is more visible to the user than the latency of
// waiting for the server. State changes only after the server confirms.
//
// Membership is tracked both as the item list and as a reverse map from
// product id to wishlist item id, for the lookup deletes need.
type Store struct {
	mu        sync.RWMutex
	api       API
	cachePath string
	items     []Item
	byProduct map[int]int // product id -> wishlist item id
}

// NewStore seeds the list from the file cache (so it doesn't flash empty on
// startup) and overwrites it on the next successful fetch.
func NewStore(api API, cachePath string) *Store {
	s := &Store{api: api, cachePath: cachePath, byProduct: map[int]int{}}
	s.replace(loadCache(cachePath), false)
	return s
}

// Refresh replaces the list and the cache file with the server wishlist.
func (s *Store) Refresh(ctx context.Context) error {
	items, err := s.api.Fetch(ctx)
	if err != nil {
		return err
	}
	s.replace(items, true)
	return nil
}

// Toggle adds the product when absent and removes it when present,
// mirroring the heart button. Returns whether the product is in the
// wishlist after the call.
func (s *Store) Toggle(ctx context.Context, productID int) (bool, error) {
	s.mu.RLock()
	itemID, present := s.byProduct[productID]
	s.mu.RUnlock()

	if present {
		if err := s.api.Delete(ctx, itemID); err != nil {
			return true, err
		}
		s.drop(itemID)
		return false, nil
	}

	item, err := s.api.Add(ctx, productID)
	if err != nil {
		return false, err
	}
	s.insert(item)
	return true, nil
}

// Remove accepts either a wishlist item id or a product id. An id that
// matches a known item id wins; only then is it tried as a product id. The
// two id spaces come from different server sequences, so an overlap is
// possible in principle; callers holding an item id got it from the server
// and expect item-id semantics.
func (s *Store) Remove(ctx context.Context, id int) error {
	s.mu.RLock()
	itemID := -1
	for _, v := range s.byProduct {
		if v == id {
			itemID = id
			break
		}
	}
	if itemID < 0 {
		if v, ok := s.byProduct[id]; ok {
			itemID = v
		}
	}
	s.mu.RUnlock()

	if itemID < 0 {
		return ErrNotInWishlist
	}
	if err := s.api.Delete(ctx, itemID); err != nil {
		return err
	}
	s.drop(itemID)
	return nil
}

// Contains reports cached membership by product id.
func (s *Store) Contains(productID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byProduct[productID]
	return ok
}

// Items returns a snapshot copy of the cached wishlist.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// ProductIDs returns the cached membership list.
func (s *Store) ProductIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.items))
	for i := range s.items {
		out = append(out, s.items[i].ProductID)
	}
	return out
}

func (s *Store) replace(items []Item, persist bool) {
	s.mu.Lock()
	s.items = items
	s.byProduct = make(map[int]int, len(items))
	for i := range items {
		s.byProduct[items[i].ProductID] = items[i].ID
	}
	snapshot := make([]Item, len(items))
	copy(snapshot, items)
	s.mu.Unlock()

	if persist {
		saveCache(s.cachePath, snapshot)
	}
}

func (s *Store) insert(item Item) {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.byProduct[item.ProductID] = item.ID
	snapshot := make([]Item, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	saveCache(s.cachePath, snapshot)
}

func (s *Store) drop(itemID int) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			delete(s.byProduct, s.items[i].ProductID)
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	snapshot := make([]Item, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	saveCache(s.cachePath, snapshot)
}
