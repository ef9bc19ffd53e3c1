package engine

import "sync"

// recentIDs remembers the last n action IDs.
type recentIDs struct {
	mu   sync.Mutex
	ring []string
	slot map[string]int
	next int
}

func newRecentIDs(n int) *recentIDs {
	if n <= 0 {
		return nil
	}
	return &recentIDs{ring: make([]string, n), slot: make(map[string]int, n)}
}

// claim records id and reports whether it was new.
func (r *recentIDs) claim(id string) bool {
	if r == nil || id == "" {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.slot[id]; seen {
		return false
	}
	if old := r.ring[r.next]; old != "" && r.slot[old] == r.next {
		delete(r.slot, old)
	}
	r.ring[r.next] = id
	r.slot[id] = r.next
	r.next = (r.next + 1) % len(r.ring)
	return true
}

// release forgets id so a failed action can be redelivered.
func (r *recentIDs) release(id string) {
	if r == nil || id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.slot[id]; ok {
		delete(r.slot, id)
		r.ring[i] = ""
	}
}
