package ingest

// keySet is an insertion-ordered string set with oldest-first eviction
// once the cap is exceeded. Not safe for concurrent use; the ingestor
// serializes access under its own mutex.
type keySet struct {
	cap   int
	seen  map[string]struct{}
	order []string
}

func newKeySet(capacity int) *keySet {
	return &keySet{cap: capacity, seen: make(map[string]struct{})}
}

func (k *keySet) contains(key string) bool {
	_, ok := k.seen[key]
	return ok
}

func (k *keySet) add(key string) {
	if _, ok := k.seen[key]; ok {
		return
	}
	k.seen[key] = struct{}{}
	k.order = append(k.order, key)
	for len(k.order) > k.cap {
		oldest := k.order[0]
		k.order = k.order[1:]
		delete(k.seen, oldest)
	}
}

func (k *keySet) len() int {
	return len(k.seen)
}
