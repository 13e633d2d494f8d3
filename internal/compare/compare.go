package compare

import "sync"

// MaxItems bounds the compare tray; a comparison across more than four
// products has no rendering.
const MaxItems = 4

// List is the transient compare selection. It lives only for the session
// and is never sent to a server.
type List struct {
	mu  sync.RWMutex
	ids []int
}

func NewList() *List {
	return &List{}
}

// Add inserts a product id once; re-adding is a no-op. Returns false when
// the tray is full.
func (l *List) Add(productID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range l.ids {
		if id == productID {
			return true
		}
	}
	if len(l.ids) >= MaxItems {
		return false
	}
	l.ids = append(l.ids, productID)
	return true
}

// Remove drops a product id if present.
func (l *List) Remove(productID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, id := range l.ids {
		if id == productID {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			return
		}
	}
}

// Contains reports membership.
func (l *List) Contains(productID int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, id := range l.ids {
		if id == productID {
			return true
		}
	}
	return false
}

// IDs returns the selection in insertion order.
func (l *List) IDs() []int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]int, len(l.ids))
	copy(out, l.ids)
	return out
}

// Clear empties the tray.
func (l *List) Clear() {
	l.mu.Lock()
	l.ids = nil
	l.mu.Unlock()
}
