package scraper

import "sync"

// URLSet is a concurrency-safe set of URLs that remembers insertion order.
type URLSet struct {
	mu    sync.Mutex
	index map[string]struct{}
	order []string
}

// NewURLSet returns an empty set.
func NewURLSet() *URLSet {
	return &URLSet{index: make(map[string]struct{})}
}

// Add inserts u and reports whether it was new.
func (s *URLSet) Add(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[u]; ok {
		return false
	}
	s.index[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

// AddAll inserts every URL and returns how many were new.
func (s *URLSet) AddAll(urls []string) int {
	added := 0
	for _, u := range urls {
		if s.Add(u) {
			added++
		}
	}
	return added
}

// Len returns the number of distinct URLs.
func (s *URLSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Items returns a copy of the URLs in insertion order.
func (s *URLSet) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
