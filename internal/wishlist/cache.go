package wishlist

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// loadCache reads the persisted wishlist so the list is populated before the
// first server fetch lands. Any read or parse failure just means an empty
// start; the cache is advisory.
func loadCache(path string) []Item {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil
	}
	return items
}

// saveCache overwrites the persisted wishlist. Failures are swallowed; the
// cache must never block a confirmed server mutation.
func saveCache(path string, items []Item) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	b, err := json.Marshal(items)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, b, 0o600)
}
